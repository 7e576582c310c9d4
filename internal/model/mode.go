package model

import (
	"fmt"
	"strings"
)

// EvaluationMode biases the tone and strictness of a critique.
type EvaluationMode string

const (
	ModeSweet  EvaluationMode = "SWEET"
	ModeMedium EvaluationMode = "MEDIUM"
	ModeSpicy  EvaluationMode = "SPICY"
)

// DefaultMode is used when no mode was selected.
const DefaultMode = ModeMedium

// Modes returns every evaluation mode in display order.
func Modes() []EvaluationMode {
	return []EvaluationMode{ModeSweet, ModeMedium, ModeSpicy}
}

// ParseMode parses a mode name case-insensitively. An empty string yields
// DefaultMode.
func ParseMode(s string) (EvaluationMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMode, nil
	}
	m := EvaluationMode(strings.ToUpper(s))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (supported: sweet, medium, spicy)", s)
	}
	return m, nil
}

// Valid reports whether m is one of the enumerated modes.
func (m EvaluationMode) Valid() bool {
	switch m {
	case ModeSweet, ModeMedium, ModeSpicy:
		return true
	}
	return false
}

// OrDefault returns m, or DefaultMode when m is empty.
func (m EvaluationMode) OrDefault() EvaluationMode {
	if m == "" {
		return DefaultMode
	}
	return m
}

// Next returns the following mode in display order, wrapping around.
func (m EvaluationMode) Next() EvaluationMode {
	modes := Modes()
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return DefaultMode
}

// ModeInfo is the display metadata for a mode.
type ModeInfo struct {
	// Label is the short badge text.
	Label string
	// Tagline is shown under the label in the mode selector.
	Tagline string
	// WaitingMessage is shown while an analysis in this mode is in flight.
	WaitingMessage string
}

var modeInfo = map[EvaluationMode]ModeInfo{
	ModeSweet: {
		Label:          "甘口 (Sweet)",
		Tagline:        "褒めて伸びる",
		WaitingMessage: "良いところを一生懸命探しています...",
	},
	ModeMedium: {
		Label:          "中辛 (Medium)",
		Tagline:        "プロの基準",
		WaitingMessage: "構図、光、色彩を確認しています",
	},
	ModeSpicy: {
		Label:          "辛口 (Spicy)",
		Tagline:        "強めのアメとムチ",
		WaitingMessage: "激辛審査員が目を光らせています...",
	},
}

// Info returns the display metadata for m. Unknown modes get the
// metadata of DefaultMode.
func (m EvaluationMode) Info() ModeInfo {
	if info, ok := modeInfo[m]; ok {
		return info
	}
	return modeInfo[DefaultMode]
}
