package main

import "testing"

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	if err != nil || steps != 1 {
		t.Fatalf("expected default of 1 step, got %d (%v)", steps, err)
	}

	steps, err = parseSteps([]string{" 3 "})
	if err != nil || steps != 3 {
		t.Fatalf("expected 3 steps, got %d (%v)", steps, err)
	}

	for _, raw := range []string{"0", "-2", "x"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	version, err := parseVersion("1771900200")
	if err != nil || version != 1771900200 {
		t.Fatalf("unexpected version %d (%v)", version, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatal("expected negative version to be rejected")
	}

	target, err := parseTarget("1771900100")
	if err != nil || target != 1771900100 {
		t.Fatalf("unexpected target %d (%v)", target, err)
	}
	if _, err := parseTarget("latest"); err == nil {
		t.Fatal("expected non-numeric target to be rejected")
	}
}

func TestEnvBool(t *testing.T) {
	for _, value := range []string{"1", "true", " YES ", "on"} {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", value)
		if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
			t.Fatalf("expected %q to be true", value)
		}
	}
	for _, value := range []string{"", "0", "false", "nope"} {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", value)
		if envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
			t.Fatalf("expected %q to be false", value)
		}
	}
}
