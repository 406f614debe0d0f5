package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ethogram/internal/session"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("boom"), exitFailure},
		{fmt.Errorf("%w (lock: /tmp/ethogram.lock)", session.ErrLocked), exitLocked},
		{fmt.Errorf("scoring interrupted after 3 files: %w", context.Canceled), exitInterrupted},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
