package match

import "strings"

// Provider short status codes.
const (
	StatusTimeToBeDefined = "TBD"
	StatusNotStarted      = "NS"
	StatusFirstHalf       = "1H"
	StatusHalfTime        = "HT"
	StatusSecondHalf      = "2H"
	StatusExtraTime       = "ET"
	StatusBreakTime       = "BT"
	StatusPenaltyLive     = "P"
	StatusFinished        = "FT"
	StatusAfterExtraTime  = "AET"
	StatusPenalties       = "PEN"
	StatusSuspended       = "SUSP"
	StatusInterrupted     = "INT"
	StatusPostponed       = "PST"
	StatusCancelled       = "CANC"
	StatusAbandoned       = "ABD"
	StatusLive            = "LIVE"
)

var startedStatuses = map[string]struct{}{
	StatusFirstHalf:      {},
	StatusHalfTime:       {},
	StatusSecondHalf:     {},
	StatusExtraTime:      {},
	StatusBreakTime:      {},
	StatusPenaltyLive:    {},
	StatusFinished:       {},
	StatusAfterExtraTime: {},
	StatusPenalties:      {},
	StatusLive:           {},
}

func NormalizeStatus(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IsStartedStatus reports whether kickoff has happened for the status code.
func IsStartedStatus(status string) bool {
	_, ok := startedStatuses[NormalizeStatus(status)]
	return ok
}
