package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mealwheel/config"
	"mealwheel/conversation"
)

// RunFunc runs one conversation, reporting progress to observer.
type RunFunc func(ctx context.Context, observer conversation.Observer) (*conversation.Outcome, error)

type runEventMsg conversation.Event

type runFinishedMsg struct {
	outcome *conversation.Outcome
	err     error
}

type flashClearMsg struct{}

// runUpdate is one item on the run's channel: a progress event, or the
// result. The result is always the last item sent.
type runUpdate struct {
	event    conversation.Event
	finished *runFinishedMsg
}

// RunView shows a run's progress and its result.
type RunView struct {
	userName string
	model    string
	run      RunFunc

	ctx     context.Context
	cancel  context.CancelFunc
	updates chan runUpdate

	spinner spinner.Model
	steps   []string

	done    bool
	outcome *conversation.Outcome
	err     error
	flash   string

	width  int
	height int

	// For tests; nil means the system clipboard.
	copyFunc func(string) error
}

func NewRunView(ctx context.Context, userName, modelName string, run RunFunc) RunView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StepStyle

	ctx, cancel := context.WithCancel(ctx)

	return RunView{
		userName: userName,
		model:    modelName,
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
		// Buffered so the run never blocks on a slow render.
		updates: make(chan runUpdate, 32),
		spinner: s,
		width:   80,
	}
}

func (v RunView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.startRun(), v.waitForEvent())
}

// startRun executes the run and reports through the update channel only, so
// waitForEvent sees every event before the result.
func (v RunView) startRun() tea.Cmd {
	updates, ctx := v.updates, v.ctx
	return func() tea.Msg {
		out, err := v.run(ctx, func(ev conversation.Event) {
			select {
			case updates <- runUpdate{event: ev}:
			case <-ctx.Done():
				// Nobody is reading once the view has quit.
			}
		})
		updates <- runUpdate{finished: &runFinishedMsg{outcome: out, err: err}}
		close(updates)
		return nil
	}
}

func (v RunView) waitForEvent() tea.Cmd {
	updates := v.updates
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		if u.finished != nil {
			return *u.finished
		}
		return runEventMsg(u.event)
	}
}

func (v RunView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			v.cancel()
			return v, tea.Quit
		case "enter":
			if v.done {
				return v, tea.Quit
			}
		case "c":
			if v.done && v.err == nil && v.outcome != nil {
				return v.copySelection()
			}
		}
		return v, nil

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case runEventMsg:
		v.steps = append(v.steps, FormatEvent(conversation.Event(msg)))
		return v, v.waitForEvent()

	case runFinishedMsg:
		v.done = true
		v.outcome = msg.outcome
		v.err = msg.err
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Run finished (err=%v)", msg.err)
		}
		return v, nil

	case flashClearMsg:
		v.flash = ""
		return v, nil
	}

	return v, nil
}

func (v RunView) copySelection() (tea.Model, tea.Cmd) {
	copyFn := v.copyFunc
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	if err := copyFn(v.outcome.Selected.Name); err != nil {
		v.flash = fmt.Sprintf("Copy failed: %v", err)
	} else {
		v.flash = "Copied to clipboard"
	}

	return v, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

func (v RunView) View() string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("MealWheel"))
	sb.WriteString(DimStyle.Render(fmt.Sprintf("  %s · %s", v.userName, v.model)))
	sb.WriteString("\n\n")

	for _, step := range v.steps {
		sb.WriteString(DoneStyle.Render("✓ "))
		sb.WriteString(StepStyle.Render(step))
		sb.WriteString("\n")
	}

	switch {
	case !v.done:
		sb.WriteString(v.spinner.View())
		sb.WriteString(DimStyle.Render(" Working..."))
		sb.WriteString("\n\n")
		sb.WriteString(HelpStyle.Render(FormatFooter("q", "Cancel")))

	case v.err != nil:
		sb.WriteString("\n")
		sb.WriteString(ErrorStyle.Render("✗ " + DescribeError(v.err)))
		sb.WriteString("\n\n")
		sb.WriteString(HelpStyle.Render(FormatFooter("Enter", "Quit")))

	default:
		sb.WriteString("\n")
		sb.WriteString(RenderMarkdown(ResultMarkdown(v.outcome), v.width))
		sb.WriteString("\n\n")
		if v.flash != "" {
			sb.WriteString(HighlightStyle.Render(v.flash))
			sb.WriteString("\n")
		}
		sb.WriteString(HelpStyle.Render(FormatFooter("c", "Copy dish", "Enter", "Quit")))
	}

	sb.WriteString("\n")
	return sb.String()
}

// Outcome returns the run result once the view is done.
func (v RunView) Outcome() (*conversation.Outcome, error) {
	return v.outcome, v.err
}

// Done reports whether the run finished (successfully or not).
func (v RunView) Done() bool {
	return v.done
}
