package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/dkimathi/safiri/agent/contract"
	profilex "github.com/dkimathi/safiri/agent/profile"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidUser    = errors.New("user id is empty")
)

type GraphInput struct {
	UserID string
	Text   string
}

type GraphOutput struct {
	Response contractx.AgentResponse
}

// GraphState is the per-message pipeline state threaded through the nodes.
type GraphState struct {
	UserID string
	Text   string
	Now    time.Time

	Profile        *profilex.UserProfile
	HistorySummary string

	SelectedTools []string
	SearchParams  contractx.SearchParams

	Results  []contractx.ToolResult
	Response contractx.AgentResponse
}

// ResultFor returns the accumulated result for a tool name, if any.
func (s *GraphState) ResultFor(name string) (contractx.ToolResult, bool) {
	for _, r := range s.Results {
		if r.Tool == name {
			return r, true
		}
	}
	return contractx.ToolResult{}, false
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		UserID: userID,
		Text:   text,
		Now:    nowFn().UTC(),
	}, nil
}
