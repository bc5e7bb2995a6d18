package orchestratornode

import (
	"fmt"

	contractx "github.com/dkimathi/safiri/agent/contract"
)

// BuildContext renders the recent-history summary used by the prompt
// stages. window is the number of most recent turns to include.
func BuildContext(in *GraphState, window int) (*GraphState, error) {
	if in == nil || in.Profile == nil {
		return nil, fmt.Errorf("%w: graph profile is nil", contractx.ErrValidation)
	}

	in.HistorySummary = in.Profile.RecentHistory(window)
	return in, nil
}

// AgentContext materializes the per-request view handed to tool executors.
func (s *GraphState) AgentContext() contractx.AgentContext {
	return contractx.AgentContext{
		UserID:         s.UserID,
		Text:           s.Text,
		HistorySummary: s.HistorySummary,
		Profile:        s.Profile,
	}
}
