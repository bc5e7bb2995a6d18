package orchestratornode

import (
	"fmt"

	contractx "github.com/dkimathi/safiri/agent/contract"
)

// AppendHistory records the exchange on both reply paths; the degraded and
// apology replies are part of the conversation too.
func AppendHistory(in *GraphState) (*GraphState, error) {
	if in == nil || in.Profile == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.Profile.AppendTurn(in.Text, in.Response.Message, in.Now)
	return in, nil
}
