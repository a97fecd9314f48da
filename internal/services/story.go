package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/clients/pinecone"
	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/repos"
	"github.com/yungbote/storyjam-backend/internal/requestdata"
	"github.com/yungbote/storyjam-backend/internal/sse"
	"github.com/yungbote/storyjam-backend/internal/types"
)

// PipelineRunner is the orchestration entrypoint the story services dispatch
// to. Defined here (not in the pipeline package) so services stay decoupled
// from the orchestrator's construction.
type PipelineRunner interface {
	Run(ctx context.Context, storyID, imageID uuid.UUID)
	RunJoke(ctx context.Context, story *types.Story)
	RunImage(ctx context.Context, story *types.Story, imageID uuid.UUID)
}

// StoryView is one story with its children, returned by GetStory.
type StoryView struct {
	Story  *types.Story        `json:"story"`
	Jokes  []*types.Joke       `json:"jokes"`
	Images []*types.StoryImage `json:"images"`
}

// StoryListItem is the list-page shape: the story plus its joke count.
type StoryListItem struct {
	Story     *types.Story `json:"story"`
	JokeCount int64        `json:"joke_count"`
}

type StoryService interface {
	CreateStory(ctx context.Context, audioFileKey string) (*types.Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (*StoryView, error)
	ListStories(ctx context.Context) ([]StoryListItem, error)
	DeleteStory(ctx context.Context, id uuid.UUID) error
}

type storyService struct {
	log     *logger.Logger
	stories repos.StoryRepo
	jokes   repos.JokeRepo
	images  repos.ImageRepo

	bucket   BucketService
	vectors  pinecone.VectorStore
	notifier StoryNotifier
	runner   PipelineRunner
}

func NewStoryService(
	log *logger.Logger,
	stories repos.StoryRepo,
	jokes repos.JokeRepo,
	images repos.ImageRepo,
	bucket BucketService,
	vectors pinecone.VectorStore,
	notifier StoryNotifier,
	runner PipelineRunner,
) StoryService {
	return &storyService{
		log:      log.With("service", "StoryService"),
		stories:  stories,
		jokes:    jokes,
		images:   images,
		bucket:   bucket,
		vectors:  vectors,
		notifier: notifier,
		runner:   runner,
	}
}

// CreateStory records the uploaded audio reference, sets every generation
// flag, pre-creates the image placeholder, and launches the pipeline. The
// response returns immediately; clients watch progress via SSE or polling.
func (s *storyService) CreateStory(ctx context.Context, audioFileKey string) (*types.Story, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	audioFileKey = strings.TrimSpace(audioFileKey)
	if audioFileKey == "" {
		return nil, fmt.Errorf("%w: audio_file_key required", pkgerrors.ErrInvalidArgument)
	}

	story := &types.Story{
		ID:           uuid.New(),
		OwnerUserID:  rd.UserID,
		AudioFileKey: audioFileKey,
		AudioFileURL: s.bucket.GetPublicURL(audioFileKey),

		GeneratingTranscript: true,
		GeneratingTitle:      true,
		GeneratingDetails:    true,
		GeneratingJoke:       true,
		GeneratingEmbedding:  true,
	}
	if _, err := s.stories.Create(ctx, nil, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	image := &types.StoryImage{
		ID:          uuid.New(),
		StoryID:     story.ID,
		OwnerUserID: rd.UserID,
		Generating:  true,
	}
	if _, err := s.images.Create(ctx, nil, image); err != nil {
		s.log.Error("Failed to create image placeholder", "story_id", story.ID, "error", err)
		image.ID = uuid.Nil
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, rd.UserID, sse.SSEEventStoryCreated, map[string]any{"story_id": story.ID})
	}

	// The pipeline outlives the request.
	go s.runner.Run(context.Background(), story.ID, image.ID)

	return story, nil
}

func (s *storyService) GetStory(ctx context.Context, id uuid.UUID) (*StoryView, error) {
	story, err := s.ownedStory(ctx, id)
	if err != nil {
		return nil, err
	}

	jokes, err := s.jokes.ListByStory(ctx, nil, story.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jokes: %w", err)
	}
	images, err := s.images.ListByStory(ctx, nil, story.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return &StoryView{
		Story:  story,
		Jokes:  jokes,
		Images: images,
	}, nil
}

func (s *storyService) ListStories(ctx context.Context) ([]StoryListItem, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	stories, err := s.stories.ListByOwner(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(stories))
	for _, st := range stories {
		ids = append(ids, st.ID)
	}
	counts, err := s.jokes.CountByStories(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count jokes: %w", err)
	}

	out := make([]StoryListItem, 0, len(stories))
	for _, st := range stories {
		out = append(out, StoryListItem{
			Story:     st,
			JokeCount: counts[st.ID],
		})
	}
	return out, nil
}

// DeleteStory removes the story row only. Jokes and images are deliberately
// left in place (non-cascading delete); they stay queryable by story id.
func (s *storyService) DeleteStory(ctx context.Context, id uuid.UUID) error {
	story, err := s.ownedStory(ctx, id)
	if err != nil {
		return err
	}

	if err := s.stories.Delete(ctx, nil, story.ID); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}

	if s.vectors != nil {
		if vErr := s.vectors.Delete(ctx, "", []string{story.ID.String()}); vErr != nil {
			s.log.Warn("Failed to delete story embedding from vector index", "story_id", story.ID, "error", vErr)
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, story.OwnerUserID, sse.SSEEventStoryDeleted, map[string]any{"story_id": story.ID})
	}
	return nil
}

// ownedStory loads a story and enforces owner-match. A mismatch reads as not
// found so callers cannot probe for other users' story ids.
func (s *storyService) ownedStory(ctx context.Context, id uuid.UUID) (*types.Story, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	story, err := s.stories.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if story.OwnerUserID != rd.UserID {
		return nil, pkgerrors.ErrNotFound
	}
	return story, nil
}
