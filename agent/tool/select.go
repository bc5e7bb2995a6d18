package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	completionx "github.com/dkimathi/safiri/pkg/completion"
)

// DefaultSelection is the fixed tool list used whenever selection cannot be
// parsed from the model. Profile runs before search so search can use fresh
// profile context.
func DefaultSelection() []string {
	return []string{ToolProfile, ToolSearch}
}

// SelectTools asks the completion service which tools to invoke for the
// message. Selection is advisory: a single failure of any kind falls back
// to DefaultSelection with no retry. Unknown names are kept; execution
// skips them with a warning.
func SelectTools(
	ctx context.Context,
	completer contractx.Completer,
	selectPrompt string,
	llmCfg llmx.Config,
	catalog *Catalog,
	text string,
) []string {
	req := completionx.Request{
		Messages: []completionx.Message{
			{Role: completionx.RoleUser, Content: fmt.Sprintf(selectPrompt, catalog.Describe(), text)},
		},
	}
	llmCfg.Apply(llmx.StageSelection, &req)

	resp, err := completer.Complete(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("tool selection call failed, using default selection")
		return DefaultSelection()
	}

	selected, err := ParseToolSelection(resp.Content)
	if err != nil {
		log.Warn().Err(err).Msg("tool selection output rejected, using default selection")
		return DefaultSelection()
	}
	return selected
}

// ParseToolSelection strictly parses model output into an ordered tool name
// list. Only the substring between the first '[' and the last ']' is
// considered.
func ParseToolSelection(raw string) ([]string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in output", contractx.ErrSchemaViolation)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}

	selected := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			selected = append(selected, trimmed)
		}
	}
	return selected, nil
}
