package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	toolx "github.com/dkimathi/safiri/agent/tool"
)

func SelectTools(
	ctx context.Context,
	in *GraphState,
	completer contractx.Completer,
	selectPrompt string,
	llmCfg llmx.Config,
	catalog *toolx.Catalog,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.SelectedTools = toolx.SelectTools(ctx, completer, selectPrompt, llmCfg, catalog, in.Text)
	return in, nil
}
