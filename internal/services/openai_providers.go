package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/storyjam-backend/internal/clients/openai"
	"github.com/yungbote/storyjam-backend/internal/logger"
)

// OpenAIProviders implements the inference interfaces on top of the shared
// OpenAI client.
type OpenAIProviders struct {
	log *logger.Logger
	ai  openai.Client
}

func NewOpenAIProviders(log *logger.Logger, ai openai.Client) (*OpenAIProviders, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	return &OpenAIProviders{
		log: log.With("service", "OpenAIProviders"),
		ai:  ai,
	}, nil
}

func (p *OpenAIProviders) Summarize(ctx context.Context, transcript string) (SummaryResult, error) {
	var out SummaryResult
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return out, fmt.Errorf("transcript required")
	}

	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"summary": map[string]any{"type": "string"},
		},
		"required": []any{"title", "summary"},
	}

	system := "You summarize transcripts of personal audio stories. " +
		"Produce a short evocative title (at most 50 characters) and a one-paragraph summary."
	user := "Transcript:\n" + transcript

	obj, err := p.ai.GenerateJSON(ctx, system, user, "story_summary_v1", schema)
	if err != nil {
		return out, err
	}
	out.Title = strings.TrimSpace(asString(obj["title"]))
	out.Summary = strings.TrimSpace(asString(obj["summary"]))
	if out.Summary == "" {
		return out, fmt.Errorf("model returned empty summary")
	}
	return out, nil
}

func (p *OpenAIProviders) ExtractDetails(ctx context.Context, transcript string) (StoryDetails, error) {
	var out StoryDetails
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return out, fmt.Errorf("transcript required")
	}

	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"protagonist": map[string]any{"type": "string"},
			"setting":     map[string]any{"type": "string"},
			"conflict":    map[string]any{"type": "string"},
		},
		"required": []any{"protagonist", "setting", "conflict"},
	}

	system := "You analyze transcripts of personal audio stories. " +
		"Identify the protagonist, the setting, and the central conflict. " +
		"Keep each to a single short phrase."
	user := "Transcript:\n" + transcript

	obj, err := p.ai.GenerateJSON(ctx, system, user, "story_details_v1", schema)
	if err != nil {
		return out, err
	}
	out.Protagonist = strings.TrimSpace(asString(obj["protagonist"]))
	out.Setting = strings.TrimSpace(asString(obj["setting"]))
	out.Conflict = strings.TrimSpace(asString(obj["conflict"]))
	return out, nil
}

func (p *OpenAIProviders) WriteJoke(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("transcript required")
	}

	system := "You are a comedy writer. Given the transcript of a personal story, " +
		"write one short, good-natured joke about it. Return only the joke text."
	text, err := p.ai.GenerateText(ctx, system, "Transcript:\n"+transcript)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned empty joke")
	}
	return text, nil
}

func (p *OpenAIProviders) DescribeImage(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("transcript required")
	}

	system := "You write prompts for an image generation model. Given the transcript " +
		"of a personal story, describe a single illustration that captures its key moment. " +
		"Return only the description; no camera jargon, no style lists."
	text, err := p.ai.GenerateText(ctx, system, "Transcript:\n"+transcript)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned empty description")
	}
	return text, nil
}

func (p *OpenAIProviders) GenerateImage(ctx context.Context, description string) (GeneratedImage, error) {
	var out GeneratedImage
	gen, err := p.ai.GenerateImage(ctx, description)
	if err != nil {
		return out, err
	}
	out.Bytes = gen.Bytes
	out.MimeType = gen.MimeType
	return out, nil
}

func (p *OpenAIProviders) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.ai.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embedding response malformed: got %d vectors", len(vecs))
	}
	return vecs[0], nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// gcsTranscriber adapts the speech provider to the Transcriber interface by
// resolving the audio key to its gs:// URI.
type gcsTranscriber struct {
	log    *logger.Logger
	speech SpeechProviderService
	bucket BucketService
}

func NewGCSTranscriber(log *logger.Logger, speech SpeechProviderService, bucket BucketService) (Transcriber, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if speech == nil {
		return nil, fmt.Errorf("speech provider required")
	}
	if bucket == nil {
		return nil, fmt.Errorf("bucket service required")
	}
	return &gcsTranscriber{
		log:    log.With("service", "GCSTranscriber"),
		speech: speech,
		bucket: bucket,
	}, nil
}

func (t *gcsTranscriber) Transcribe(ctx context.Context, audioFileKey string) (string, error) {
	audioFileKey = strings.TrimSpace(audioFileKey)
	if audioFileKey == "" {
		return "", fmt.Errorf("audioFileKey required")
	}
	res, err := t.speech.TranscribeAudioGCS(ctx, t.bucket.GSURI(audioFileKey), SpeechConfig{
		EnableAutomaticPunctuation: true,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(res.PrimaryText)
	if text == "" {
		return "", fmt.Errorf("empty transcript for %q", audioFileKey)
	}
	return text, nil
}
