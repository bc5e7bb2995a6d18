package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/dkimathi/safiri/agent/contract"
	toolx "github.com/dkimathi/safiri/agent/tool"
)

// ExecuteTools runs the selected tools one at a time, in selection order.
// Execution is intentionally sequential: profile runs before search so the
// search stage sees fresh profile context, and synthesis aggregates over
// the full result set.
func ExecuteTools(
	ctx context.Context,
	in *GraphState,
	catalog *toolx.Catalog,
) (*GraphState, error) {
	if in == nil || in.Profile == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	ac := in.AgentContext()
	for _, name := range in.SelectedTools {
		t, ok := catalog.Get(name)
		if !ok {
			log.Warn().Str("tool", name).Msg("selection referenced unknown tool, skipping")
			continue
		}

		in.Results = append(in.Results, runTool(ctx, t, toolArgs(name, in), ac))
	}
	return in, nil
}

func toolArgs(name string, in *GraphState) map[string]any {
	switch name {
	case toolx.ToolSearch:
		return toolx.SearchArgs(in.SearchParams)
	case toolx.ToolProfile:
		return map[string]any{"action": toolx.ProfileActionGet}
	default:
		return map[string]any{}
	}
}

// runTool contains executor failures: a returned error or a panic becomes
// an error entry in the result set instead of failing the request. The
// search tool additionally carries its degraded fallback message.
func runTool(ctx context.Context, t toolx.Tool, args map[string]any, ac contractx.AgentContext) (result contractx.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", t.Name).Any("panic", r).Msg("tool executor panicked")
			result = failureResult(t.Name, fmt.Sprintf("tool panicked: %v", r))
		}
	}()

	out, err := t.Exec(ctx, args, ac)
	if err != nil {
		log.Warn().Err(err).Str("tool", t.Name).Msg("tool execution failed")
		return failureResult(t.Name, err.Error())
	}
	if out.Tool == "" {
		out.Tool = t.Name
	}
	if out.Error != "" {
		log.Warn().Str("tool", t.Name).Str("error", out.Error).Msg("tool reported failure")
	}
	return out
}

func failureResult(name, message string) contractx.ToolResult {
	result := contractx.ToolResult{
		Tool:  name,
		Error: message,
	}
	if name == toolx.ToolSearch {
		result.FallbackMessage = toolx.FallbackMessage
	}
	return result
}
