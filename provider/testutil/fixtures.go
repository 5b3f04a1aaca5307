package testutil

import (
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealwheel/model"
)

// CallTurn returns a scripted turn carrying one directive.
func CallTurn(id, name, arguments string) Turn {
	return Turn{Result: model.TurnResult{Call: &model.FunctionCall{
		ID:        id,
		Name:      name,
		Arguments: arguments,
	}}}
}

// ContentTurn returns a scripted terminal turn.
func ContentTurn(content string) Turn {
	return Turn{Result: model.TurnResult{Content: content}}
}

// ErrorTurn returns a scripted failed turn.
func ErrorTurn(err error) Turn {
	return Turn{Err: err}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// FunctionRoundTrip returns a transcript with a system prompt, the user
// question, one directive and its function result.
func FunctionRoundTrip() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "You pick dinner."},
		{Role: model.RoleUser, Content: "What is the list of mealWheel dishes for the mealWheel user whose name is crapshack?"},
		{Role: model.RoleAssistant, Call: &model.FunctionCall{
			ID:        "call_1",
			Name:      "getMealWheelUserId",
			Arguments: `{"name":"crapshack"}`,
		}},
		{Role: model.RoleFunction, Name: "getMealWheelUserId", CallID: "call_1", Content: `{"id":"42"}`},
	}
}

// LookupTool returns a catalog entry shaped like the MealWheel user lookup.
func LookupTool() mcptypes.Tool {
	return mcptypes.NewTool("getMealWheelUserId",
		mcptypes.WithDescription("Get a mealWheel user id given a mealWheel user name"),
		mcptypes.WithString("name",
			mcptypes.Required(),
			mcptypes.Description("The name of the mealWheel user"),
		),
	)
}
