package services

import "context"

// The pipeline consumes these narrow provider interfaces rather than the raw
// API clients so tests can substitute deterministic fakes.

type SummaryResult struct {
	Title   string
	Summary string
}

type StoryDetails struct {
	Protagonist string
	Setting     string
	Conflict    string
}

type GeneratedImage struct {
	Bytes    []byte
	MimeType string
}

// Transcriber converts an uploaded audio object into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFileKey string) (string, error)
}

// Summarizer produces a title and summary from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (SummaryResult, error)
}

// DetailExtractor pulls structured narrative details out of a transcript.
type DetailExtractor interface {
	ExtractDetails(ctx context.Context, transcript string) (StoryDetails, error)
}

// JokeWriter writes a short joke grounded in the transcript.
type JokeWriter interface {
	WriteJoke(ctx context.Context, transcript string) (string, error)
}

// ImageDescriber produces an illustration prompt from a transcript.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, transcript string) (string, error)
}

// ImageGenerator renders an illustration from a description.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, description string) (GeneratedImage, error)
}

// Embedder embeds text for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
