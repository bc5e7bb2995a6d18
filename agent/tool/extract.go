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

// categoryCue maps a keyword onto a category. Cues are checked with
// case-insensitive substring matching in table order; the first hit wins.
type categoryCue struct {
	keyword  string
	category string
}

var categoryCues = []categoryCue{
	{"hotel", CategoryHotels},
	{"stay", CategoryHotels},
	{"flight", CategoryFlights},
	{"fly", CategoryFlights},
	{"restaurant", CategoryRestaurants},
	{"food", CategoryRestaurants},
	{"eat", CategoryRestaurants},
	{"pizza", CategoryRestaurants},
	{"buy", CategoryProducts},
	{"shop", CategoryProducts},
	{"product", CategoryProducts},
}

// ExtractSearchParams turns free text into structured search parameters.
// The strict model-backed stage is best effort; any failure falls back to
// the keyword heuristic, so this never fails the request. Empty input skips
// the model call entirely.
func ExtractSearchParams(
	ctx context.Context,
	completer contractx.Completer,
	extractPrompt string,
	llmCfg llmx.Config,
	text string,
) contractx.SearchParams {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return HeuristicSearchParams(trimmed)
	}

	req := completionx.Request{
		Messages: []completionx.Message{
			{Role: completionx.RoleUser, Content: fmt.Sprintf(extractPrompt, trimmed)},
		},
	}
	llmCfg.Apply(llmx.StageExtraction, &req)

	resp, err := completer.Complete(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("param extraction call failed, using heuristic")
		return HeuristicSearchParams(trimmed)
	}

	params, err := ParseSearchParams(resp.Content)
	if err != nil {
		log.Warn().Err(err).Msg("param extraction output rejected, using heuristic")
		return HeuristicSearchParams(trimmed)
	}
	return params
}

// ParseSearchParams strictly parses model output into SearchParams. Models
// sometimes wrap JSON in prose, so only the substring between the first '{'
// and the last '}' is considered. Valid output must carry a non-empty query.
func ParseSearchParams(raw string) (contractx.SearchParams, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return contractx.SearchParams{}, fmt.Errorf("%w: no JSON object in output", contractx.ErrSchemaViolation)
	}

	var params contractx.SearchParams
	if err := json.Unmarshal([]byte(raw[start:end+1]), &params); err != nil {
		return contractx.SearchParams{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}

	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return contractx.SearchParams{}, fmt.Errorf("%w: query is empty", contractx.ErrSchemaViolation)
	}
	params.Category = strings.TrimSpace(strings.ToLower(params.Category))
	return params, nil
}

// HeuristicSearchParams is the deterministic fallback extractor: the raw
// trimmed message becomes the query and the category is picked by the first
// matching keyword cue.
func HeuristicSearchParams(text string) contractx.SearchParams {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return contractx.SearchParams{
			Query:    "general search",
			Category: CategoryGeneral,
		}
	}

	lower := strings.ToLower(trimmed)
	category := CategoryGeneral
	for _, cue := range categoryCues {
		if strings.Contains(lower, cue.keyword) {
			category = cue.category
			break
		}
	}

	return contractx.SearchParams{
		Query:    trimmed,
		Category: category,
	}
}
