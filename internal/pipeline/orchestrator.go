package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/storyjam-backend/internal/clients/pinecone"
	"github.com/yungbote/storyjam-backend/internal/logger"
	"github.com/yungbote/storyjam-backend/internal/repos"
	"github.com/yungbote/storyjam-backend/internal/services"
	"github.com/yungbote/storyjam-backend/internal/sse"
	"github.com/yungbote/storyjam-backend/internal/types"
)

// Orchestrator drives the generation pipeline for one story: a blocking
// transcript stage followed by a concurrent fan-out of the independent
// downstream stages. Each downstream stage commits its own fields and clears
// its own flag; a failing stage never blocks or cancels its siblings. Only a
// terminal transcript failure short-circuits the pipeline.
type Orchestrator struct {
	log *logger.Logger

	stories repos.StoryRepo
	jokes   repos.JokeRepo
	images  repos.ImageRepo

	transcriber    services.Transcriber
	summarizer     services.Summarizer
	detailExtract  services.DetailExtractor
	jokeWriter     services.JokeWriter
	imageDescriber services.ImageDescriber
	imageGenerator services.ImageGenerator
	embedder       services.Embedder

	bucket   services.BucketService
	vectors  pinecone.VectorStore
	notifier services.StoryNotifier

	exec *StageExecutor
}

type OrchestratorDeps struct {
	Stories repos.StoryRepo
	Jokes   repos.JokeRepo
	Images  repos.ImageRepo

	Transcriber    services.Transcriber
	Summarizer     services.Summarizer
	DetailExtract  services.DetailExtractor
	JokeWriter     services.JokeWriter
	ImageDescriber services.ImageDescriber
	ImageGenerator services.ImageGenerator
	Embedder       services.Embedder

	Bucket   services.BucketService
	Vectors  pinecone.VectorStore
	Notifier services.StoryNotifier

	Retry RetryPolicy
}

func NewOrchestrator(log *logger.Logger, deps OrchestratorDeps) (*Orchestrator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Stories == nil || deps.Jokes == nil || deps.Images == nil {
		return nil, fmt.Errorf("story, joke and image repos required")
	}
	if deps.Transcriber == nil || deps.Summarizer == nil || deps.DetailExtract == nil ||
		deps.JokeWriter == nil || deps.ImageDescriber == nil || deps.ImageGenerator == nil ||
		deps.Embedder == nil {
		return nil, fmt.Errorf("all inference providers required")
	}
	if deps.Retry.MaxAttempts <= 0 {
		deps.Retry = DefaultRetryPolicy()
	}
	olog := log.With("component", "Orchestrator")
	return &Orchestrator{
		log:            olog,
		stories:        deps.Stories,
		jokes:          deps.Jokes,
		images:         deps.Images,
		transcriber:    deps.Transcriber,
		summarizer:     deps.Summarizer,
		detailExtract:  deps.DetailExtract,
		jokeWriter:     deps.JokeWriter,
		imageDescriber: deps.ImageDescriber,
		imageGenerator: deps.ImageGenerator,
		embedder:       deps.Embedder,
		bucket:         deps.Bucket,
		vectors:        deps.Vectors,
		notifier:       deps.Notifier,
		exec:           NewStageExecutor(olog, deps.Retry),
	}, nil
}

// Run executes the whole pipeline for a newly created story. imageID is the
// pre-created placeholder image record the image stage patches. Run blocks
// until every scheduled stage reaches a terminal state; callers launch it in
// its own goroutine.
func (o *Orchestrator) Run(ctx context.Context, storyID, imageID uuid.UUID) {
	story, err := o.stories.GetByID(ctx, nil, storyID)
	if err != nil {
		o.log.Error("Pipeline run aborted; story not found", "story_id", storyID, "error", err)
		return
	}

	transcript, err := o.runTranscript(ctx, story)
	if err != nil {
		o.shortCircuit(ctx, story, imageID)
		return
	}

	// Independent fan-out; stage errors are committed as fallbacks inside
	// each runner, so sibling failure can never cancel the group.
	var g errgroup.Group
	g.Go(func() error { o.runSummary(ctx, story, transcript); return nil })
	g.Go(func() error { o.runDetails(ctx, story, transcript); return nil })
	g.Go(func() error { o.runJoke(ctx, story, transcript); return nil })
	g.Go(func() error { o.runImage(ctx, story, imageID, transcript); return nil })
	g.Go(func() error { o.runEmbedding(ctx, story, transcript); return nil })
	_ = g.Wait()

	o.notify(ctx, story, sse.SSEEventPipelineComplete, map[string]any{"story_id": story.ID})
	o.log.Info("Pipeline complete", "story_id", story.ID)
}

// RunJoke executes a user re-triggered joke stage. The caller must have
// already flipped generating_joke via StoryRepo.BeginGeneration.
func (o *Orchestrator) RunJoke(ctx context.Context, story *types.Story) {
	if story == nil || story.Transcript == nil {
		return
	}
	o.runJoke(ctx, story, *story.Transcript)
}

// RunImage executes a user re-triggered image stage against a pre-created
// placeholder record.
func (o *Orchestrator) RunImage(ctx context.Context, story *types.Story, imageID uuid.UUID) {
	if story == nil || story.Transcript == nil {
		return
	}
	o.runImage(ctx, story, imageID, *story.Transcript)
}

// -------------------- stages --------------------

func (o *Orchestrator) runTranscript(ctx context.Context, story *types.Story) (string, error) {
	var transcript string
	err := o.exec.Execute(ctx, "transcript", func(ctx context.Context) error {
		text, err := o.transcriber.Transcribe(ctx, story.AudioFileKey)
		if err != nil {
			return err
		}
		transcript = text
		return nil
	})
	if err != nil {
		return "", err
	}

	if pErr := o.stories.PatchFields(ctx, nil, story.ID, map[string]interface{}{
		"transcript":            transcript,
		"generating_transcript": false,
	}); pErr != nil {
		o.log.Error("Failed to commit transcript", "story_id", story.ID, "error", pErr)
		return "", pErr
	}
	o.notify(ctx, story, sse.SSEEventStoryUpdated, map[string]any{"story_id": story.ID, "field": FieldTranscript})
	return transcript, nil
}

// shortCircuit handles terminal transcript failure: there is no fallback for
// a transcript, so downstream stages are never dispatched and their flags are
// explicitly cleared so nothing reads as in-progress forever.
func (o *Orchestrator) shortCircuit(ctx context.Context, story *types.Story, imageID uuid.UUID) {
	if err := o.stories.PatchFields(ctx, nil, story.ID, map[string]interface{}{
		"generating_transcript": false,
		"generating_title":      false,
		"generating_details":    false,
		"generating_joke":       false,
		"generating_embedding":  false,
	}); err != nil {
		o.log.Error("Failed to clear flags after transcript failure", "story_id", story.ID, "error", err)
	}
	if imageID != uuid.Nil {
		if err := o.images.PatchFields(ctx, nil, imageID, map[string]interface{}{
			"generating": false,
		}); err != nil {
			o.log.Error("Failed to clear image placeholder after transcript failure", "image_id", imageID, "error", err)
		}
	}
	o.notify(ctx, story, sse.SSEEventPipelineComplete, map[string]any{
		"story_id":          story.ID,
		"transcript_failed": true,
	})
	o.log.Warn("Transcript failed terminally; downstream stages skipped", "story_id", story.ID)
}

func (o *Orchestrator) runSummary(ctx context.Context, story *types.Story, transcript string) {
	var result services.SummaryResult
	err := o.exec.Execute(ctx, "summary", func(ctx context.Context) error {
		r, err := o.summarizer.Summarize(ctx, transcript)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	updates := map[string]interface{}{"generating_title": false}
	if err != nil {
		updates["summary"] = SummaryFallback
		updates["title"] = TitleFromTranscript(transcript)
	} else {
		updates["summary"] = result.Summary
		updates["title"] = result.Title
	}
	if pErr := o.stories.PatchFields(ctx, nil, story.ID, updates); pErr != nil {
		o.log.Error("Failed to commit summary", "story_id", story.ID, "error", pErr)
		return
	}
	o.notify(ctx, story, sse.SSEEventStoryUpdated, map[string]any{"story_id": story.ID, "field": FieldTitle})
}

func (o *Orchestrator) runDetails(ctx context.Context, story *types.Story, transcript string) {
	var details services.StoryDetails
	err := o.exec.Execute(ctx, "details", func(ctx context.Context) error {
		d, err := o.detailExtract.ExtractDetails(ctx, transcript)
		if err != nil {
			return err
		}
		details = d
		return nil
	})

	updates := map[string]interface{}{"generating_details": false}
	if err == nil {
		updates["protagonist"] = details.Protagonist
		updates["setting"] = details.Setting
		updates["conflict"] = details.Conflict
	}
	if pErr := o.stories.PatchFields(ctx, nil, story.ID, updates); pErr != nil {
		o.log.Error("Failed to commit details", "story_id", story.ID, "error", pErr)
		return
	}
	o.notify(ctx, story, sse.SSEEventStoryUpdated, map[string]any{"story_id": story.ID, "field": FieldDetails})
}

func (o *Orchestrator) runJoke(ctx context.Context, story *types.Story, transcript string) {
	var text string
	err := o.exec.Execute(ctx, "joke", func(ctx context.Context) error {
		t, err := o.jokeWriter.WriteJoke(ctx, transcript)
		if err != nil {
			return err
		}
		text = t
		return nil
	})

	if err == nil {
		joke := &types.Joke{
			ID:          uuid.New(),
			StoryID:     story.ID,
			OwnerUserID: story.OwnerUserID,
			Text:        text,
		}
		if _, cErr := o.jokes.Create(ctx, nil, joke); cErr != nil {
			o.log.Error("Failed to create joke", "story_id", story.ID, "error", cErr)
		} else {
			o.notify(ctx, story, sse.SSEEventJokeCreated, map[string]any{"story_id": story.ID, "joke_id": joke.ID})
		}
	}

	// Jokes have no fallback record; a terminal failure just releases the
	// flag so the user can trigger another attempt.
	if pErr := o.stories.PatchFields(ctx, nil, story.ID, map[string]interface{}{
		"generating_joke": false,
	}); pErr != nil {
		o.log.Error("Failed to clear joke flag", "story_id", story.ID, "error", pErr)
	}
	o.notify(ctx, story, sse.SSEEventStoryUpdated, map[string]any{"story_id": story.ID, "field": FieldJoke})
}

func (o *Orchestrator) runImage(ctx context.Context, story *types.Story, imageID uuid.UUID, transcript string) {
	if imageID == uuid.Nil {
		return
	}

	var description string
	var generated services.GeneratedImage
	err := o.exec.Execute(ctx, "image", func(ctx context.Context) error {
		d, err := o.imageDescriber.DescribeImage(ctx, transcript)
		if err != nil {
			return err
		}
		img, err := o.imageGenerator.GenerateImage(ctx, d)
		if err != nil {
			return err
		}
		description = d
		generated = img
		return nil
	})

	updates := map[string]interface{}{"generating": false}
	if err == nil {
		key := fmt.Sprintf("stories/%s/images/%s.png", story.ID, imageID)
		if upErr := o.bucket.UploadFile(ctx, key, bytes.NewReader(generated.Bytes), generated.MimeType); upErr != nil {
			o.log.Error("Failed to upload generated image", "story_id", story.ID, "image_id", imageID, "error", upErr)
		} else {
			updates["description"] = description
			updates["image_file_key"] = key
			updates["image_file_url"] = o.bucket.GetPublicURL(key)
		}
	}
	if pErr := o.images.PatchFields(ctx, nil, imageID, updates); pErr != nil {
		o.log.Error("Failed to commit image", "story_id", story.ID, "image_id", imageID, "error", pErr)
		return
	}
	o.notify(ctx, story, sse.SSEEventImageUpdated, map[string]any{"story_id": story.ID, "image_id": imageID})
}

func (o *Orchestrator) runEmbedding(ctx context.Context, story *types.Story, transcript string) {
	var vec []float32
	err := o.exec.Execute(ctx, "embedding", func(ctx context.Context) error {
		v, err := o.embedder.Embed(ctx, transcript)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})

	updates := map[string]interface{}{"generating_embedding": false}
	if err == nil {
		raw, mErr := json.Marshal(vec)
		if mErr != nil {
			o.log.Error("Failed to encode embedding", "story_id", story.ID, "error", mErr)
		} else {
			updates["embedding"] = raw
		}
		if o.vectors != nil {
			if vErr := o.vectors.Upsert(ctx, "", []pinecone.Vector{{
				ID:     story.ID.String(),
				Values: vec,
				Metadata: map[string]any{
					"user_id": story.OwnerUserID.String(),
				},
			}}); vErr != nil {
				o.log.Error("Failed to upsert embedding to vector index", "story_id", story.ID, "error", vErr)
			}
		}
	}
	if pErr := o.stories.PatchFields(ctx, nil, story.ID, updates); pErr != nil {
		o.log.Error("Failed to commit embedding", "story_id", story.ID, "error", pErr)
		return
	}
	o.notify(ctx, story, sse.SSEEventStoryUpdated, map[string]any{"story_id": story.ID, "field": FieldEmbedding})
}

func (o *Orchestrator) notify(ctx context.Context, story *types.Story, event sse.SSEEvent, data any) {
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(ctx, story.OwnerUserID, event, data)
}
