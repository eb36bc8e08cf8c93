package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":                   ErrorQuota,
		"deepseek generate: error 402: credit": ErrorQuota,
		"429 rate limit":                       ErrorRate,
		"context too long":                     ErrorContext,
		"maximum context length exceeded":      ErrorContext,
		"timeout":                              ErrorTransient,
		"deepseek generate: error 503: busy":   ErrorTransient,
		"bad request":                          ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestClassifyErrorDeadline(t *testing.T) {
	err := fmt.Errorf("deepseek generate: %w", context.DeadlineExceeded)
	if got := ClassifyError(err); got != ErrorTransient {
		t.Fatalf("deadline: got %s", got)
	}
	if got := ClassifyError(nil); got != "" {
		t.Fatalf("nil: got %s", got)
	}
}
