package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMissingField, "record %d has no %q field", 2, "cat")

	if err.Code != ErrCodeMissingField {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMissingField)
	}

	expected := `MISSING_FIELD: record 2 has no "cat" field`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidModel, cause, "decode model")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Error() != "INVALID_MODEL: decode model: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeNonNumeric, "x"), ErrCodeNonNumeric, true},
		{"different code", New(ErrCodeNonNumeric, "x"), ErrCodeMissingField, false},
		{"wrapped with fmt", fmt.Errorf("layout: %w", New(ErrCodeMissingField, "x")), ErrCodeMissingField, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("render: %w", New(ErrCodeInvalidColor, "bad color %q", "#zz"))

	if got := GetCode(err); got != ErrCodeInvalidColor {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidColor)
	}
	if got := UserMessage(err); got != `bad color "#zz"` {
		t.Errorf("UserMessage() = %q", got)
	}

	plain := errors.New("boom")
	if GetCode(plain) != "" {
		t.Error("GetCode(plain) should be empty")
	}
	if UserMessage(plain) != "boom" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeNonNumeric, "x"), 400},
		{New(ErrCodeInvalidFormat, "x"), 400},
		{New(ErrCodeFileNotFound, "x"), 404},
		{New(ErrCodeUnsupported, "x"), 422},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
