package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	toolx "github.com/dkimathi/safiri/agent/tool"
)

// ExtractParams runs parameter extraction, but only when the search tool was
// actually selected; the extra model call is pointless otherwise.
func ExtractParams(
	ctx context.Context,
	in *GraphState,
	completer contractx.Completer,
	extractPrompt string,
	llmCfg llmx.Config,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if !selectionContains(in.SelectedTools, toolx.ToolSearch) {
		return in, nil
	}

	in.SearchParams = toolx.ExtractSearchParams(ctx, completer, extractPrompt, llmCfg, in.Text)
	return in, nil
}

func selectionContains(names []string, target string) bool {
	for _, name := range names {
		if name == target {
			return true
		}
	}
	return false
}
