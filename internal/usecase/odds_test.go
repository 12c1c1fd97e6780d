package usecase

import (
	"testing"

	"github.com/riskibarqy/quiniela/internal/domain/match"
)

func matchWinnerOdds(values ...ExternalBetValue) []ExternalOdds {
	return []ExternalOdds{
		{
			FixtureID: 1035037,
			Bookmakers: []ExternalBookmaker{
				{
					ID:   8,
					Name: "Bet365",
					Bets: []ExternalBet{{ID: 1, Name: "Match Winner", Values: values}},
				},
			},
		},
	}
}

func TestParseMatchWinnerOdds_DrawOnlyKeepsDefaults(t *testing.T) {
	t.Parallel()

	got := ParseMatchWinnerOdds(matchWinnerOdds(ExternalBetValue{Value: "Draw", Odd: "3.40"}))
	if got.Draw != 3.40 {
		t.Fatalf("expected draw=3.40, got=%v", got.Draw)
	}
	if got.Home != 2.0 || got.Away != 4.0 {
		t.Fatalf("expected default home/away 2.0/4.0, got=%v/%v", got.Home, got.Away)
	}
}

func TestParseMatchWinnerOdds_AllOutcomes(t *testing.T) {
	t.Parallel()

	got := ParseMatchWinnerOdds(matchWinnerOdds(
		ExternalBetValue{Value: "Home", Odd: "1.85"},
		ExternalBetValue{Value: "Draw", Odd: "3.60"},
		ExternalBetValue{Value: "Away", Odd: "4.20"},
	))
	want := match.Odds{Home: 1.85, Draw: 3.60, Away: 4.20}
	if got != want {
		t.Fatalf("unexpected odds: got=%+v want=%+v", got, want)
	}
}

func TestParseMatchWinnerOdds_MalformedValueFallsBack(t *testing.T) {
	t.Parallel()

	got := ParseMatchWinnerOdds(matchWinnerOdds(
		ExternalBetValue{Value: "Home", Odd: "n/a"},
		ExternalBetValue{Value: "Away", Odd: "-1"},
	))
	if got != match.DefaultOdds() {
		t.Fatalf("expected default odds, got=%+v", got)
	}
}

func TestParseMatchWinnerOdds_OtherMarketIgnored(t *testing.T) {
	t.Parallel()

	items := []ExternalOdds{
		{Bookmakers: []ExternalBookmaker{{Bets: []ExternalBet{{Name: "Goals Over/Under", Values: []ExternalBetValue{{Value: "Home", Odd: "1.10"}}}}}}},
	}
	if got := ParseMatchWinnerOdds(items); got != match.DefaultOdds() {
		t.Fatalf("expected default odds, got=%+v", got)
	}
}

func TestParseMatchWinnerOdds_NoBookmakers(t *testing.T) {
	t.Parallel()

	if got := ParseMatchWinnerOdds([]ExternalOdds{{FixtureID: 1}}); got != match.DefaultOdds() {
		t.Fatalf("expected default odds, got=%+v", got)
	}
	if got := ParseMatchWinnerOdds(nil); got != match.DefaultOdds() {
		t.Fatalf("expected default odds for nil input, got=%+v", got)
	}
}
