package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"mealwheel/conversation"
	"mealwheel/functions"
	"mealwheel/model"
)

// RenderMarkdown renders md for a terminal of the given width.
// Autolink is disabled so plain URLs stay plain text for the terminal to
// detect.
func RenderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(md))
	return strings.TrimRight(string(gomarkdown.Render(doc, r)), "\n")
}

// ResultMarkdown describes a successful run.
func ResultMarkdown(out *conversation.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Tonight: %s\n\n", out.Selected.Name)
	fmt.Fprintf(&sb, "Picked at random from %d main dishes for **%s**", len(out.MainDishes), out.UserName)
	if out.UserID != "" {
		fmt.Fprintf(&sb, " (id `%s`)", out.UserID)
	}
	sb.WriteString(":\n\n")
	for _, d := range out.MainDishes {
		if d.ID == out.Selected.ID && d.Name == out.Selected.Name {
			fmt.Fprintf(&sb, "- **%s**\n", d.Name)
		} else {
			fmt.Fprintf(&sb, "- %s\n", d.Name)
		}
	}
	return sb.String()
}

// DescribeError turns a run error into a short user-facing message.
func DescribeError(err error) string {
	var noMatch *functions.NoMatchError
	switch {
	case errors.As(err, &noMatch):
		if len(noMatch.Suggestions) > 0 {
			return fmt.Sprintf("No MealWheel user is named %q. Did you mean %s?",
				noMatch.Name, strings.Join(noMatch.Suggestions, ", "))
		}
		return fmt.Sprintf("No MealWheel user is named %q.", noMatch.Name)
	case errors.Is(err, model.ErrEmptySelection):
		return "That user has no main dishes to choose from."
	case errors.Is(err, model.ErrNetworkFailure):
		return fmt.Sprintf("A server could not be reached: %v", err)
	case errors.Is(err, model.ErrMalformedResponse):
		return fmt.Sprintf("The model did not follow the protocol: %v", err)
	default:
		return err.Error()
	}
}

// FormatEvent renders one progress step as a single line.
func FormatEvent(ev conversation.Event) string {
	switch ev.Kind {
	case conversation.EventTurnSent:
		return fmt.Sprintf("round %d: asking the model", ev.Round)
	case conversation.EventFunctionCalled:
		return fmt.Sprintf("round %d: model called %s(%s)", ev.Round, ev.Function, ev.Arguments)
	case conversation.EventFunctionResult:
		switch ev.Function {
		case functions.GetUserIDFunction:
			return fmt.Sprintf("round %d: user id is %s", ev.Round, ev.Detail)
		case functions.GetMainDishesFunction:
			return fmt.Sprintf("round %d: %d main dishes found", ev.Round, ev.Count)
		default:
			return fmt.Sprintf("round %d: %s returned", ev.Round, ev.Function)
		}
	case conversation.EventDishPicked:
		return fmt.Sprintf("picked %s", ev.Detail)
	default:
		return ev.Kind.String()
	}
}

// PlainObserver prints each event as a line to w. Used when the TUI is off.
func PlainObserver(w io.Writer) conversation.Observer {
	return func(ev conversation.Event) {
		fmt.Fprintln(w, FormatEvent(ev))
	}
}
