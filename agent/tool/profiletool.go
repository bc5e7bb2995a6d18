package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	contractx "github.com/dkimathi/safiri/agent/contract"
	profilex "github.com/dkimathi/safiri/agent/profile"
)

// Profile tool actions.
const (
	ProfileActionGet         = "get"
	ProfileActionUpdate      = "update"
	ProfileActionAddFavorite = "add_favorite"
)

// NewUserSummary stands in for the profile summary when nothing is saved
// yet.
const NewUserSummary = "New user"

type ProfileGetOutput struct {
	Summary string `json:"summary"`
}

type ProfileUpdateOutput struct {
	Summary string `json:"summary"`
}

type AddFavoriteOutput struct {
	List  string `json:"list"`
	Value string `json:"value"`
	Added bool   `json:"added"`
}

// NewProfileTool builds the profile capability. Mutations change the
// in-memory profile on the AgentContext; the orchestrator persists it at the
// end of the turn.
func NewProfileTool() Tool {
	return Tool{
		Name: ToolProfile,
		Desc: "Read or update the user's saved preferences and favorites.",
		Params: []Param{
			{Name: "action", Type: "string", Desc: "get | update | add_favorite"},
			{Name: "updates", Type: "object", Desc: "Partial profile fields to merge (update)"},
			{Name: "list", Type: "string", Desc: "restaurants | hotels | destinations (add_favorite)"},
			{Name: "value", Type: "string", Desc: "Favorite entry to add (add_favorite)"},
		},
		Exec: executeProfile,
	}
}

func executeProfile(_ context.Context, args map[string]any, ac contractx.AgentContext) (contractx.ToolResult, error) {
	if ac.Profile == nil {
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: "no profile loaded for this request",
		}, nil
	}

	action := ProfileActionGet
	if raw, ok := args["action"]; ok {
		s, ok := raw.(string)
		if !ok {
			return contractx.ToolResult{
				Tool:  ToolProfile,
				Error: "action must be a string",
			}, nil
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			action = trimmed
		}
	}

	switch action {
	case ProfileActionGet:
		return contractx.ToolResult{
			Tool:   ToolProfile,
			Result: ProfileGetOutput{Summary: profileSummary(ac.Profile)},
		}, nil
	case ProfileActionUpdate:
		return executeProfileUpdate(args, ac.Profile)
	case ProfileActionAddFavorite:
		return executeAddFavorite(args, ac.Profile)
	default:
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: fmt.Sprintf("unknown profile action %q", action),
		}, nil
	}
}

func executeProfileUpdate(args map[string]any, p *profilex.UserProfile) (contractx.ToolResult, error) {
	raw, ok := args["updates"]
	if !ok {
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: "updates is required",
		}, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: fmt.Sprintf("invalid updates: %v", err),
		}, nil
	}
	var update profilex.Update
	if err := json.Unmarshal(encoded, &update); err != nil {
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: fmt.Sprintf("invalid updates: %v", err),
		}, nil
	}

	p.ApplyUpdate(update, time.Now())
	return contractx.ToolResult{
		Tool:   ToolProfile,
		Result: ProfileUpdateOutput{Summary: profileSummary(p)},
	}, nil
}

func executeAddFavorite(args map[string]any, p *profilex.UserProfile) (contractx.ToolResult, error) {
	list, _ := args["list"].(string)
	value, _ := args["value"].(string)

	added, err := p.AddFavorite(strings.TrimSpace(list), value, time.Now())
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolProfile,
			Error: err.Error(),
		}, nil
	}

	return contractx.ToolResult{
		Tool: ToolProfile,
		Result: AddFavoriteOutput{
			List:  strings.TrimSpace(list),
			Value: strings.TrimSpace(value),
			Added: added,
		},
	}, nil
}

func profileSummary(p *profilex.UserProfile) string {
	if summary := p.Summary(); summary != "" {
		return summary
	}
	return NewUserSummary
}
