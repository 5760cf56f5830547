package common

import (
	"errors"
	"testing"
)

func TestSchemaError(t *testing.T) {
	err := &SchemaError{File: "2024-03.csv", Missing: []string{"date", "amount"}}
	want := "file 2024-03.csv: missing required columns [date amount]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "amount", Reason: "must be strictly positive"}
	if err.Error() != "invalid amount: must be strictly positive" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUserErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("failed to save progress", inner)

	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to be found with errors.Is")
	}
	if err.Error() != "failed to save progress: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := NewUserError("nothing to do", nil)
	if bare.Error() != "nothing to do" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
