package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_CollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("test.Config").
		Required("URI", "").
		Required("Username", "").
		OneOf("Mode", "bogus", []string{"a", "b"})

	if got := len(cv.Errors()); got != 3 {
		t.Errorf("Expected 3 errors, got %d", got)
	}

	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected combined error")
	}
	if !strings.Contains(err.Error(), "3 errors") {
		t.Errorf("Expected combined error message, got %v", err)
	}
}

func TestConfigValidator_SingleErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("boom")
	err := NewConfigValidator("test.Config").
		Custom("Field", func() error { return sentinel }).
		Validate()
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped sentinel, got %v", err)
	}
}

func TestConfigValidator_AllValid(t *testing.T) {
	err := NewConfigValidator("test.Config").
		Required("URI", "http://localhost").
		MinDuration("Timeout", 5*time.Second, time.Second).
		When(false, func(cv *ConfigValidator) { cv.Required("Never", "") }).
		Validate()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	if DefaultOr("", "fallback") != "fallback" {
		t.Error("DefaultOr did not apply fallback")
	}
	if DefaultOr("set", "fallback") != "set" {
		t.Error("DefaultOr overrode a set value")
	}
	if DefaultOrDuration(0, time.Minute) != time.Minute {
		t.Error("DefaultOrDuration did not apply fallback")
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Style string `validate:"required,oneof=multiline single"`
	}

	if err := ValidateRequest(&req{Style: "single"}); err != nil {
		t.Errorf("Valid request rejected: %v", err)
	}

	err := ValidateRequest(&req{Style: "sideways"})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("Unexpected message: %v", err)
	}
}
