package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/dkimathi/safiri/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Response.Message) == "" {
		return GraphOutput{}, fmt.Errorf("%w: synthesized reply is empty", contractx.ErrValidation)
	}
	return GraphOutput{Response: in.Response}, nil
}
