package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	promptx "github.com/dkimathi/safiri/agent/prompt"
	toolx "github.com/dkimathi/safiri/agent/tool"
	completionx "github.com/dkimathi/safiri/pkg/completion"
)

// Fixed confidence labels for the three reply paths. They mark which path
// produced the reply, not a measured score.
const (
	ConfidenceNormal   = 0.85
	ConfidenceDegraded = 0.3
	ConfidenceFailure  = 0.1
)

// ApologyMessage is the ultimate failure floor, returned when the synthesis
// call itself fails.
const ApologyMessage = "Sorry, something went wrong on my side. Please try again in a moment."

// SynthesizeReply produces the final reply. Two paths: a degraded path
// returning the search tool's pre-written fallback verbatim when search
// failed, and a normal path making one synthesis call over the accumulated
// context. Neither path retries.
func SynthesizeReply(
	ctx context.Context,
	in *GraphState,
	completer contractx.Completer,
	prompts promptx.PromptSet,
	llmCfg llmx.Config,
) (*GraphState, error) {
	if in == nil || in.Profile == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	if searchResult, ok := in.ResultFor(toolx.ToolSearch); ok && searchResult.Error != "" {
		in.Response = degradedResponse(searchResult, executedTools(in))
		return in, nil
	}

	req := completionx.Request{
		Messages: []completionx.Message{
			{Role: completionx.RoleSystem, Content: prompts.Persona},
			{Role: completionx.RoleUser, Content: synthesisPrompt(prompts.Synthesize, in)},
		},
	}
	llmCfg.Apply(llmx.StageSynthesis, &req)

	resp, err := completer.Complete(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("synthesis call failed, returning apology floor")
		in.Response = contractx.AgentResponse{
			Message:    ApologyMessage,
			Confidence: ConfidenceFailure,
			ToolsUsed:  []string{},
		}
		return in, nil
	}

	in.Response = contractx.AgentResponse{
		Message:    resp.Content,
		Confidence: ConfidenceNormal,
		ToolsUsed:  executedTools(in),
	}
	return in, nil
}

// degradedResponse bypasses the model entirely: the completion service has
// no context to explain a search outage.
func degradedResponse(searchResult contractx.ToolResult, toolsUsed []string) contractx.AgentResponse {
	return contractx.AgentResponse{
		Message:    searchResult.FallbackMessage + "\n\n" + toolx.CategoryMenuPrompt,
		Confidence: ConfidenceDegraded,
		ToolsUsed:  toolsUsed,
	}
}

func synthesisPrompt(template string, in *GraphState) string {
	summary := in.Profile.Summary()
	if summary == "" {
		summary = toolx.NewUserSummary
	}

	history := in.HistorySummary
	if history == "" {
		history = "(none)"
	}

	return fmt.Sprintf(template, summary, history, renderResults(in.Results), in.Text)
}

func renderResults(results []contractx.ToolResult) string {
	if len(results) == 0 {
		return "(no tools were invoked)"
	}
	pretty, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", results)
	}
	return string(pretty)
}

func executedTools(in *GraphState) []string {
	names := make([]string, 0, len(in.Results))
	for _, r := range in.Results {
		names = append(names, r.Tool)
	}
	return names
}
