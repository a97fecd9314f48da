package pipeline

import (
	"github.com/yungbote/storyjam-backend/internal/types"
)

// FieldState is the explicit lifecycle of one derived field. The store only
// persists the boolean generating flag; the rest is projected from flag plus
// field value so there is no second source of truth.
type FieldState string

const (
	FieldInProgress         FieldState = "in_progress"
	FieldSucceeded          FieldState = "succeeded"
	FieldFailedWithFallback FieldState = "failed_with_fallback"
	// FieldSkipped marks downstream fields that were never run because the
	// transcript stage failed terminally.
	FieldSkipped FieldState = "skipped"
)

// Field names used in progress projections.
const (
	FieldTranscript = "transcript"
	FieldTitle      = "title"
	FieldDetails    = "details"
	FieldJoke       = "joke"
	FieldEmbedding  = "embedding"
)

// Progress is the read-side projection clients poll to drive loading UI.
type Progress struct {
	InProgress []string          `json:"in_progress"`
	States     map[string]string `json:"states"`
	IsComplete bool              `json:"is_complete"`
}

// ProjectProgress recomputes the generation state from a story record plus
// its joke count. It has no storage of its own. Joke text lives on child
// records rather than the story row, so success there is inferred from the
// count.
func ProjectProgress(s *types.Story, jokeCount int64) Progress {
	transcriptFailed := !s.GeneratingTranscript && s.Transcript == nil

	states := map[string]string{
		FieldTranscript: string(fieldState(s.GeneratingTranscript, s.Transcript != nil, false)),
		FieldTitle:      string(fieldState(s.GeneratingTitle, s.Title != nil, transcriptFailed)),
		FieldDetails:    string(fieldState(s.GeneratingDetails, s.Protagonist != nil || s.Setting != nil || s.Conflict != nil, transcriptFailed)),
		FieldJoke:       string(fieldState(s.GeneratingJoke, jokeCount > 0, transcriptFailed)),
		FieldEmbedding:  string(fieldState(s.GeneratingEmbedding, len(s.Embedding) > 0, transcriptFailed)),
	}

	inProgress := make([]string, 0, len(states))
	for _, f := range []string{FieldTranscript, FieldTitle, FieldDetails, FieldJoke, FieldEmbedding} {
		if states[f] == string(FieldInProgress) {
			inProgress = append(inProgress, f)
		}
	}

	return Progress{
		InProgress: inProgress,
		States:     states,
		IsComplete: len(inProgress) == 0,
	}
}

func fieldState(generating bool, hasValue bool, transcriptFailed bool) FieldState {
	if generating {
		return FieldInProgress
	}
	if hasValue {
		return FieldSucceeded
	}
	if transcriptFailed {
		return FieldSkipped
	}
	return FieldFailedWithFallback
}
