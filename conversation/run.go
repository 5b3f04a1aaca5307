package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/mealwheel"
	"mealwheel/model"
)

const (
	defaultMaxRounds      = 4
	defaultRequestTimeout = 60 * time.Second
)

// QuestionFor is the opening user message of every run.
func QuestionFor(userName string) string {
	return fmt.Sprintf("What is the list of mealWheel dishes for the mealWheel user whose name is %s?", userName)
}

// EventKind identifies a progress step of a run.
type EventKind int

const (
	EventTurnSent EventKind = iota
	EventFunctionCalled
	EventFunctionResult
	EventDishPicked
)

func (k EventKind) String() string {
	switch k {
	case EventTurnSent:
		return "turn"
	case EventFunctionCalled:
		return "call"
	case EventFunctionResult:
		return "result"
	case EventDishPicked:
		return "picked"
	default:
		return "unknown"
	}
}

// Event describes one step. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Round     int
	Function  string
	Arguments string
	// Count is the number of main dishes for a dish-list result.
	Count int
	// Detail is the user id for a lookup result, or the picked dish name.
	Detail string
}

// Observer receives progress events synchronously from Run.
type Observer func(Event)

// RunnerConfig tunes a Runner. Zero values select defaults.
type RunnerConfig struct {
	MaxRounds      int
	RequestTimeout time.Duration
	SystemPrompt   string
	Rand           *rand.Rand
	Observer       Observer
}

// Runner drives one conversation per Run call. A Runner may be reused but
// not shared between concurrent runs.
type Runner struct {
	driver     *Driver
	dispatcher *functions.Dispatcher

	maxRounds      int
	requestTimeout time.Duration
	systemPrompt   string
	rng            *rand.Rand
	observer       Observer
}

func NewRunner(provider model.Provider, dispatcher *functions.Dispatcher, cfg RunnerConfig) *Runner {
	r := &Runner{
		driver:         NewDriver(provider, dispatcher.Catalog()),
		dispatcher:     dispatcher,
		maxRounds:      cfg.MaxRounds,
		requestTimeout: cfg.RequestTimeout,
		systemPrompt:   cfg.SystemPrompt,
		rng:            cfg.Rand,
		observer:       cfg.Observer,
	}
	if r.maxRounds <= 0 {
		r.maxRounds = defaultMaxRounds
	}
	if r.requestTimeout <= 0 {
		r.requestTimeout = defaultRequestTimeout
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return r
}

// Outcome is the result of a run.
type Outcome struct {
	RunID      string
	UserName   string
	UserID     string
	MainDishes []mealwheel.Dish
	Selected   mealwheel.Dish
	Transcript model.Transcript
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run asks the model for userName's dishes, executes each function it
// requests and stops as soon as a main-dish list arrives, picking one of
// them at random. The pick is not sent back to the model.
//
// On failure Run still returns the partial Outcome (id, transcript so far)
// along with the error, so the caller can record the attempt.
func (r *Runner) Run(ctx context.Context, userName string) (*Outcome, error) {
	out := &Outcome{
		RunID:     uuid.NewString(),
		UserName:  userName,
		StartedAt: time.Now(),
	}
	defer func() { out.FinishedAt = time.Now() }()

	if r.systemPrompt != "" {
		out.Transcript.Append(model.Message{Role: model.RoleSystem, Content: r.systemPrompt})
	}
	out.Transcript.Append(model.Message{Role: model.RoleUser, Content: QuestionFor(userName)})

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Runner] Run %s started for %q (max %d rounds)", out.RunID, userName, r.maxRounds)
	}

	for round := 1; round <= r.maxRounds; round++ {
		r.emit(Event{Kind: EventTurnSent, Round: round})

		call, err := r.expectCall(ctx, out.Transcript, model.TurnOptions{ForceAuto: round == 1})
		if err != nil {
			return out, fmt.Errorf("round %d: %w", round, err)
		}
		r.emit(Event{Kind: EventFunctionCalled, Round: round, Function: call.Name, Arguments: call.Arguments})

		out.Transcript.Append(model.Message{Role: model.RoleAssistant, Call: &call})

		res, err := r.dispatch(ctx, call)
		if err != nil {
			return out, fmt.Errorf("round %d: %s: %w", round, call.Name, err)
		}

		out.Transcript.Append(model.Message{
			Role:    model.RoleFunction,
			Name:    res.Name,
			CallID:  call.ID,
			Content: res.Content,
		})

		switch v := res.Value.(type) {
		case string:
			out.UserID = v
			r.emit(Event{Kind: EventFunctionResult, Round: round, Function: res.Name, Detail: v})

		case []mealwheel.Dish:
			out.MainDishes = v
			r.emit(Event{Kind: EventFunctionResult, Round: round, Function: res.Name, Count: len(v)})

			selected, err := PickDish(r.rng, v)
			if err != nil {
				return out, fmt.Errorf("no main dishes to choose from: %w", err)
			}
			out.Selected = selected
			r.emit(Event{Kind: EventDishPicked, Round: round, Detail: selected.Name})

			if config.DebugLog != nil {
				config.DebugLog.Printf("[Runner] Run %s picked %q from %d main dishes", out.RunID, selected.Name, len(v))
			}
			return out, nil

		default:
			r.emit(Event{Kind: EventFunctionResult, Round: round, Function: res.Name})
		}
	}

	return out, fmt.Errorf("%w: no main dishes after %d rounds", model.ErrMalformedResponse, r.maxRounds)
}

func (r *Runner) expectCall(ctx context.Context, transcript model.Transcript, opts model.TurnOptions) (model.FunctionCall, error) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()
	return r.driver.ExpectCall(ctx, transcript, opts)
}

func (r *Runner) dispatch(ctx context.Context, call model.FunctionCall) (functions.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()
	return r.dispatcher.Dispatch(ctx, call)
}

func (r *Runner) emit(ev Event) {
	if r.observer != nil {
		r.observer(ev)
	}
}
