package pipeline

import (
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/storyjam-backend/internal/types"
)

func strptr(s string) *string { return &s }

func TestProjectProgressAllInFlight(t *testing.T) {
	story := &types.Story{
		GeneratingTranscript: true,
		GeneratingTitle:      true,
		GeneratingDetails:    true,
		GeneratingJoke:       true,
		GeneratingEmbedding:  true,
	}
	p := ProjectProgress(story, 0)

	if p.IsComplete {
		t.Fatalf("IsComplete: want=false got=true")
	}
	if len(p.InProgress) != 5 {
		t.Fatalf("InProgress length: want=5 got=%d (%v)", len(p.InProgress), p.InProgress)
	}
	for field, state := range p.States {
		if state != string(FieldInProgress) {
			t.Fatalf("state of %s: want=%s got=%s", field, FieldInProgress, state)
		}
	}
}

func TestProjectProgressSucceeded(t *testing.T) {
	story := &types.Story{
		Transcript:  strptr("I went to the park"),
		Title:       strptr("Park Day"),
		Summary:     strptr("A walk in the park."),
		Protagonist: strptr("the narrator"),
		Setting:     strptr("a park"),
		Conflict:    strptr("none"),
		Embedding:   datatypes.JSON([]byte("[0.1,0.2]")),
	}
	p := ProjectProgress(story, 1)

	if !p.IsComplete {
		t.Fatalf("IsComplete: want=true got=false")
	}
	if len(p.InProgress) != 0 {
		t.Fatalf("InProgress: want empty got=%v", p.InProgress)
	}
	for field, state := range p.States {
		if state != string(FieldSucceeded) {
			t.Fatalf("state of %s: want=%s got=%s", field, FieldSucceeded, state)
		}
	}
}

func TestProjectProgressSkippedAfterTranscriptFailure(t *testing.T) {
	// All flags cleared, transcript null: the run short-circuited.
	story := &types.Story{}
	p := ProjectProgress(story, 0)

	if !p.IsComplete {
		t.Fatalf("IsComplete: want=true got=false")
	}
	if got := p.States[FieldTranscript]; got != string(FieldFailedWithFallback) {
		t.Fatalf("transcript state: want=%s got=%s", FieldFailedWithFallback, got)
	}
	for _, field := range []string{FieldTitle, FieldDetails, FieldJoke, FieldEmbedding} {
		if got := p.States[field]; got != string(FieldSkipped) {
			t.Fatalf("state of %s: want=%s got=%s", field, FieldSkipped, got)
		}
	}
}

func TestProjectProgressJokeFallbackWithoutRecords(t *testing.T) {
	// Joke stage exhausted retries: flag cleared, no joke rows inserted.
	story := &types.Story{
		Transcript: strptr("I went to the park"),
		Title:      strptr("Park Day"),
	}
	p := ProjectProgress(story, 0)

	if got := p.States[FieldJoke]; got != string(FieldFailedWithFallback) {
		t.Fatalf("joke state without records: want=%s got=%s", FieldFailedWithFallback, got)
	}
	if got := ProjectProgress(story, 2).States[FieldJoke]; got != string(FieldSucceeded) {
		t.Fatalf("joke state with records: want=%s got=%s", FieldSucceeded, got)
	}
}

func TestProjectProgressPartialCompletion(t *testing.T) {
	story := &types.Story{
		Transcript:          strptr("once upon a time"),
		Title:               strptr("Once"),
		Summary:             strptr("short"),
		GeneratingDetails:   true,
		GeneratingEmbedding: true,
	}
	p := ProjectProgress(story, 1)

	if p.IsComplete {
		t.Fatalf("IsComplete: want=false got=true")
	}
	want := []string{FieldDetails, FieldEmbedding}
	if len(p.InProgress) != len(want) {
		t.Fatalf("InProgress: want=%v got=%v", want, p.InProgress)
	}
	for i, f := range want {
		if p.InProgress[i] != f {
			t.Fatalf("InProgress[%d]: want=%s got=%s", i, f, p.InProgress[i])
		}
	}
	if got := p.States[FieldTitle]; got != string(FieldSucceeded) {
		t.Fatalf("title state: want=%s got=%s", FieldSucceeded, got)
	}
}

func TestTitleFromTranscript(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		want       string
	}{
		{"empty", "", TitleFallback},
		{"whitespace only", "   \n\t", TitleFallback},
		{"short", "I went to the park", "I went to the park"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"truncated", strings.Repeat("b", 80), strings.Repeat("b", 50)},
		{"multibyte safe", strings.Repeat("é", 60), strings.Repeat("é", 50)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TitleFromTranscript(tc.transcript)
			if got != tc.want {
				t.Fatalf("want=%q got=%q", tc.want, got)
			}
		})
	}
}
