package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mealwheel/model"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"network failure", fmt.Errorf("round 1: %w", model.ErrNetworkFailure), 1},
		{"no such user", fmt.Errorf("round 1: %w", model.ErrNoMatch), 1},
		{"request timeout", fmt.Errorf("round 2: %w", context.DeadlineExceeded), 1},
		{"interrupted mid request", fmt.Errorf("round 1: %w: OpenAI chat completion: %w", model.ErrNetworkFailure, context.Canceled), 130},
		{"program killed by signal", fmt.Errorf("%w: %w", tea.ErrProgramKilled, context.Canceled), 130},
		{"program killed", tea.ErrProgramKilled, 130},
		{"program interrupted", tea.ErrInterrupted, 130},
		{"program panic", fmt.Errorf("%w: %w", tea.ErrProgramKilled, tea.ErrProgramPanic), 1},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
