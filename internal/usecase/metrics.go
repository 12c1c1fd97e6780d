package usecase

// MetricsRecorder receives business counters from the services.
type MetricsRecorder interface {
	CoinsCredited(source string, amount float64)
	MirrorAttempt(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) CoinsCredited(string, float64) {}
func (nopMetrics) MirrorAttempt(string)          {}

const (
	mirrorOutcomeSuccess = "success"
	mirrorOutcomeFailure = "failure"
)
