package evaluator

import (
	_ "embed"
	"strings"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// Rubric is the fixed evaluation rubric shared by every mode.
// Loaded from prompts/rubric.md at compile time.
//
//go:embed prompts/rubric.md
var Rubric string

var (
	//go:embed prompts/sweet.md
	sweetTone string
	//go:embed prompts/medium.md
	mediumTone string
	//go:embed prompts/spicy.md
	spicyTone string
)

// toneBlocks maps every mode to its tone block. Must cover model.Modes().
var toneBlocks = map[model.EvaluationMode]string{
	model.ModeSweet:  sweetTone,
	model.ModeMedium: mediumTone,
	model.ModeSpicy:  spicyTone,
}

// ToneBlock returns the tone block for mode, falling back to the MEDIUM
// block for values outside the enumeration.
func ToneBlock(mode model.EvaluationMode) string {
	if block, ok := toneBlocks[mode]; ok {
		return block
	}
	return toneBlocks[model.ModeMedium]
}

// BuildInstruction returns the instruction sent alongside the photo:
// the rubric followed by exactly one tone block.
func BuildInstruction(mode model.EvaluationMode) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(Rubric))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(ToneBlock(mode)))
	b.WriteString("\n")
	return b.String()
}

// TemperatureFor returns the sampling temperature hint for mode.
// SPICY needs more personality than the other two.
func TemperatureFor(mode model.EvaluationMode) float64 {
	if mode == model.ModeSpicy {
		return 0.7
	}
	return 0.4
}
