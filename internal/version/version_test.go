package version

import "testing"

func TestString(t *testing.T) {
	if String() != Version {
		t.Errorf("String() = %q, want %q", String(), Version)
	}
	if String() == "" {
		t.Error("String() must never be empty")
	}
}

func TestCommitLdflagsOverride(t *testing.T) {
	orig := commit
	defer func() { commit = orig }()

	commit = "abc1234"
	if got := Commit(); got != "abc1234" {
		t.Errorf("Commit() = %q, want %q", got, "abc1234")
	}
}

func TestDateDefault(t *testing.T) {
	orig := date
	defer func() { date = orig }()

	date = "unknown"
	if got := Date(); got != "unknown" {
		t.Errorf("Date() = %q, want %q", got, "unknown")
	}
	date = "2026-08-26T00:00:00Z"
	if got := Date(); got != "2026-08-26T00:00:00Z" {
		t.Errorf("Date() = %q", got)
	}
}
