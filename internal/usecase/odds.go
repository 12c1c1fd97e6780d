package usecase

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/quiniela/internal/domain/match"
)

const matchWinnerBet = "Match Winner"

// ParseMatchWinnerOdds reads 1X2 odds from the first bookmaker's first bet of
// the first odds item carrying a "Match Winner" market. Missing or malformed
// outcomes keep their default value.
func ParseMatchWinnerOdds(items []ExternalOdds) match.Odds {
	odds := match.DefaultOdds()
	for _, item := range items {
		if len(item.Bookmakers) == 0 {
			continue
		}
		bookmaker := item.Bookmakers[0]
		if len(bookmaker.Bets) == 0 {
			continue
		}
		bet := bookmaker.Bets[0]
		if bet.Name != matchWinnerBet {
			continue
		}

		for _, value := range bet.Values {
			switch strings.TrimSpace(value.Value) {
			case "Home":
				odds.Home = parseOdd(value.Odd, odds.Home)
			case "Draw":
				odds.Draw = parseOdd(value.Odd, odds.Draw)
			case "Away":
				odds.Away = parseOdd(value.Odd, odds.Away)
			}
		}
		break
	}

	return odds
}

func parseOdd(raw string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
