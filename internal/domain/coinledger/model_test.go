package coinledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoginKey(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*60*60)
	at := time.Date(2025, 3, 2, 3, 0, 0, 0, jakarta)
	if got := LoginKey(at); got != "login:2025-03-01" {
		t.Fatalf("unexpected login key: %s", got)
	}
}

func TestIsReservedJornada(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"login:2025-03-01", " Login:x", "LOGIN:"} {
		if !IsReservedJornada(name) {
			t.Fatalf("expected %q to be reserved", name)
		}
	}
	for _, name := range []string{"", "jornada-1", "current", "relogin:1"} {
		if IsReservedJornada(name) {
			t.Fatalf("expected %q to be allowed", name)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	t.Parallel()

	valid := Entry{
		ID:         "e-1",
		UserID:     7,
		Jornada:    "jornada-1",
		Source:     SourceJornada,
		Amount:     decimal.NewFromInt(100),
		AssignedAt: time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero
	if err := zeroAmount.Validate(); err == nil {
		t.Fatalf("expected error for zero amount")
	}

	noJornada := valid
	noJornada.Jornada = "  "
	if err := noJornada.Validate(); err == nil {
		t.Fatalf("expected error for empty jornada")
	}
}
