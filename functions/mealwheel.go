package functions

import (
	"context"
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"

	"mealwheel/config"
	"mealwheel/mealwheel"
	"mealwheel/model"
)

const (
	GetUserIDFunction     = "getMealWheelUserId"
	GetMainDishesFunction = "getMealWheelMainDishes"

	maxSuggestions = 3
)

// MealWheelAPI is the part of mealwheel.Client the handlers need.
type MealWheelAPI interface {
	Users(ctx context.Context) ([]mealwheel.User, error)
	Dishes(ctx context.Context, userID string) ([]mealwheel.DishFromServer, error)
}

// NoMatchError reports a user name with no exact match, with close names
// the caller can show as "did you mean".
type NoMatchError struct {
	Name        string
	Suggestions []string
}

func (e *NoMatchError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no MealWheel user named %q", e.Name)
	}
	return fmt.Sprintf("no MealWheel user named %q (did you mean %v?)", e.Name, e.Suggestions)
}

func (e *NoMatchError) Unwrap() error {
	return model.ErrNoMatch
}

// MealWheelTools returns the two function specs offered to the model.
func MealWheelTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		mcptypes.NewTool(GetUserIDFunction,
			mcptypes.WithDescription("Get a mealWheel user id given a mealWheel user name"),
			mcptypes.WithString("name",
				mcptypes.Required(),
				mcptypes.Description("The name of the mealWheel user"),
			),
		),
		mcptypes.NewTool(GetMainDishesFunction,
			mcptypes.WithDescription("List the mealWheel main dishes given a mealWheel user id"),
			mcptypes.WithString("userId",
				mcptypes.Required(),
				mcptypes.Description("The id of the mealWheel user"),
			),
		),
	}
}

// NewMealWheelDispatcher wires the MealWheel catalog to handlers backed by api.
func NewMealWheelDispatcher(api MealWheelAPI) (*Dispatcher, error) {
	catalog, err := NewCatalog(MealWheelTools()...)
	if err != nil {
		return nil, err
	}

	return NewDispatcher(catalog, map[string]Handler{
		GetUserIDFunction: func(ctx context.Context, args map[string]any) (Result, error) {
			return getUserID(ctx, api, args["name"].(string))
		},
		GetMainDishesFunction: func(ctx context.Context, args map[string]any) (Result, error) {
			return getMainDishes(ctx, api, args["userId"].(string))
		},
	})
}

func getUserID(ctx context.Context, api MealWheelAPI, name string) (Result, error) {
	users, err := api.Users(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list MealWheel users: %w", err)
	}

	id, ok := mealwheel.FindUserID(users, name)
	if !ok {
		return Result{}, &NoMatchError{Name: name, Suggestions: suggestNames(name, mealwheel.UserNames(users))}
	}

	content, err := json.Marshal(struct {
		ID string `json:"id"`
	}{ID: id})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode user id: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatcher] User %q resolved to id %s", name, id)
	}

	return Result{Content: string(content), Value: id}, nil
}

func getMainDishes(ctx context.Context, api MealWheelAPI, userID string) (Result, error) {
	records, err := api.Dishes(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list MealWheel dishes: %w", err)
	}

	mains, err := mealwheel.MainDishes(records)
	if err != nil {
		return Result{}, err
	}

	content, err := json.Marshal(mains)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode dishes: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatcher] %d of %d dishes are mains for user %s", len(mains), len(records), userID)
	}

	return Result{Content: string(content), Value: mains}, nil
}

func suggestNames(name string, names []string) []string {
	matches := fuzzy.Find(name, names)
	var out []string
	for _, m := range matches {
		if m.Str == name {
			continue
		}
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
