package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/persona.txt
	personaRaw string

	//go:embed template/select_tools.txt
	selectToolsRaw string

	//go:embed template/extract_params.txt
	extractParamsRaw string

	//go:embed template/synthesize.txt
	synthesizeRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Persona       string
	SelectTools   string
	ExtractParams string
	Synthesize    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Persona:       strings.TrimSpace(personaRaw),
		SelectTools:   strings.TrimSpace(selectToolsRaw),
		ExtractParams: strings.TrimSpace(extractParamsRaw),
		Synthesize:    strings.TrimSpace(synthesizeRaw),
	}
}
