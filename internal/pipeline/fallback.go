package pipeline

import "strings"

// Fallback values committed when a stage exhausts its retries. They are
// deliberate sentinels, not errors: clients render them as final content and
// the corresponding flag is cleared so nothing stays "generating" forever.
const (
	SummaryFallback = "Summary failed to generate"
	TitleFallback   = "Untitled story"

	titleFallbackMaxLen = 50
)

// TitleFromTranscript derives the fallback title from the opening of the
// transcript, capped at 50 characters.
func TitleFromTranscript(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return TitleFallback
	}
	runes := []rune(transcript)
	if len(runes) <= titleFallbackMaxLen {
		return transcript
	}
	return string(runes[:titleFallbackMaxLen])
}
