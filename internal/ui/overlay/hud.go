package overlay

import (
	"fmt"
	"math"
	"strings"

	"zenbreath/internal/core/model"
	"zenbreath/internal/core/phase"
)

// HUD holds the texts shown on the session window.
type HUD struct {
	Round       string
	Total       string
	Instruction string
	Detail      string
	Timer       string
}

// Describe renders a state snapshot for display.
func Describe(state phase.State, config model.SessionConfig) HUD {
	round := min(state.Round+1, max(config.Rounds, 1))
	hud := HUD{
		Round: fmt.Sprintf("Round %d / %d", round, config.Rounds),
		Total: formatClock(state.ElapsedSeconds),
	}

	switch state.Phase {
	case phase.Prepare:
		hud.Instruction = "Get ready..."
		hud.Timer = countdown(state.Timer)
	case phase.Breathing:
		if state.Inhaling {
			hud.Instruction = "Inhale..."
		} else {
			hud.Instruction = "Exhale..."
		}
		hud.Detail = fmt.Sprintf("%d / %d", state.BreathCount+1, config.BreathsPerRound)
	case phase.Retention:
		hud.Instruction = "Hold your breath"
		hud.Detail = fmt.Sprintf("Target: %ds", config.RetentionTarget(state.Round))
		hud.Timer = formatClock(int(state.Timer))
	case phase.RecoveryInhale:
		hud.Instruction = "Breathe in deeply"
		hud.Timer = fmt.Sprintf("%.1f", math.Max(state.Timer, 0))
	case phase.RecoveryHold:
		hud.Instruction = "Hold (recovery)"
		hud.Timer = countdown(state.Timer)
	case phase.Intermission:
		hud.Instruction = "Round complete!"
		hud.Detail = "Well done. On to the next one..."
		hud.Timer = countdown(state.Timer)
	case phase.Finished:
		hud.Instruction = "Session complete"
	}
	if state.Paused {
		hud.Detail = "Paused"
	}
	return hud
}

// Line joins the non-empty texts for single-line displays.
func (hud HUD) Line() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{hud.Round, hud.Total, hud.Instruction, hud.Detail, hud.Timer} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " | ")
}

func countdown(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", int(math.Ceil(seconds-1e-9)))
}

func formatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
