package llm

import (
	"strings"

	completionx "github.com/dkimathi/safiri/pkg/completion"
)

// Stage identifies which completion call of the pipeline is being made;
// each stage can override the default model and temperature.
type Stage string

const (
	StageSelection  Stage = "selection"
	StageExtraction Stage = "extraction"
	StageSynthesis  Stage = "synthesis"
)

// Config carries optional per-stage overrides on top of the completion
// client defaults. Selection and extraction are usually pinned to a cheaper
// model at low temperature. A negative temperature means "no override".
type Config struct {
	SelectionModel  string `envconfig:"SELECTION_MODEL" split_words:"true"`
	ExtractionModel string `envconfig:"EXTRACTION_MODEL" split_words:"true"`
	SynthesisModel  string `envconfig:"SYNTHESIS_MODEL" split_words:"true"`

	SelectionTemperature  float32 `envconfig:"SELECTION_TEMPERATURE" split_words:"true" default:"-1"`
	ExtractionTemperature float32 `envconfig:"EXTRACTION_TEMPERATURE" split_words:"true" default:"-1"`
	SynthesisTemperature  float32 `envconfig:"SYNTHESIS_TEMPERATURE" split_words:"true" default:"-1"`
}

// Apply sets the stage overrides on req, leaving client defaults in place
// where no override is configured.
func (c Config) Apply(stage Stage, req *completionx.Request) {
	var model string
	temperature := float32(-1)

	switch stage {
	case StageSelection:
		model = c.SelectionModel
		temperature = c.SelectionTemperature
	case StageExtraction:
		model = c.ExtractionModel
		temperature = c.ExtractionTemperature
	case StageSynthesis:
		model = c.SynthesisModel
		temperature = c.SynthesisTemperature
	}

	if v := strings.TrimSpace(model); v != "" {
		req.Model = v
	}
	if temperature >= 0 {
		t := temperature
		req.Temperature = &t
	}
}
