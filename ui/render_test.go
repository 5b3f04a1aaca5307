package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mealwheel/conversation"
	"mealwheel/functions"
	"mealwheel/model"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		ev   conversation.Event
		want string
	}{
		{conversation.Event{Kind: conversation.EventTurnSent, Round: 1}, "round 1: asking the model"},
		{
			conversation.Event{Kind: conversation.EventFunctionCalled, Round: 1, Function: functions.GetUserIDFunction, Arguments: `{"name":"crapshack"}`},
			`round 1: model called getMealWheelUserId({"name":"crapshack"})`,
		},
		{
			conversation.Event{Kind: conversation.EventFunctionResult, Round: 1, Function: functions.GetUserIDFunction, Detail: "42"},
			"round 1: user id is 42",
		},
		{
			conversation.Event{Kind: conversation.EventFunctionResult, Round: 2, Function: functions.GetMainDishesFunction, Count: 2},
			"round 2: 2 main dishes found",
		},
		{conversation.Event{Kind: conversation.EventDishPicked, Detail: "Curry"}, "picked Curry"},
	}

	for _, tt := range tests {
		if got := FormatEvent(tt.ev); got != tt.want {
			t.Errorf("FormatEvent(%v) = %q, want %q", tt.ev.Kind, got, tt.want)
		}
	}
}

func TestPlainObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := PlainObserver(&buf)
	obs(conversation.Event{Kind: conversation.EventTurnSent, Round: 1})
	obs(conversation.Event{Kind: conversation.EventDishPicked, Detail: "Curry"})

	if got := buf.String(); got != "round 1: asking the model\npicked Curry\n" {
		t.Errorf("output = %q", got)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "no match with suggestions",
			err:  fmt.Errorf("round 1: %w", &functions.NoMatchError{Name: "bob", Suggestions: []string{"bobby", "rob"}}),
			want: "Did you mean bobby, rob?",
		},
		{
			name: "no match",
			err:  &functions.NoMatchError{Name: "zed"},
			want: `No MealWheel user is named "zed".`,
		},
		{
			name: "empty selection",
			err:  fmt.Errorf("x: %w", model.ErrEmptySelection),
			want: "no main dishes",
		},
		{
			name: "network",
			err:  fmt.Errorf("%w: GET users: 503", model.ErrNetworkFailure),
			want: "could not be reached",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeError(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("DescribeError() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestResultMarkdown(t *testing.T) {
	md := ResultMarkdown(sampleOutcome())

	if !strings.HasPrefix(md, "# Tonight: Curry\n") {
		t.Errorf("heading = %q", strings.SplitN(md, "\n", 2)[0])
	}
	if !strings.Contains(md, "- **Curry**") || !strings.Contains(md, "- Lasagna") {
		t.Errorf("dish list not rendered:\n%s", md)
	}
	if !strings.Contains(md, "2 main dishes") {
		t.Errorf("count missing:\n%s", md)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Tonight: Curry\n\nSee https://example.com", 60)
	if !strings.Contains(strings.ToLower(out), "curry") {
		t.Errorf("rendered output missing heading text:\n%s", out)
	}
	if !strings.Contains(out, "https://example.com") {
		t.Errorf("plain URL should survive rendering:\n%s", out)
	}
}
