package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/repos"
	"github.com/yungbote/storyjam-backend/internal/requestdata"
)

type JokeService interface {
	// RequestJoke re-triggers the joke stage for a story. Duplicate triggers
	// while one is in flight are rejected with ErrGenerationInFlight.
	RequestJoke(ctx context.Context, storyID uuid.UUID) error
	DeleteJoke(ctx context.Context, jokeID uuid.UUID) error
}

type jokeService struct {
	log     *logger.Logger
	stories repos.StoryRepo
	jokes   repos.JokeRepo
	runner  PipelineRunner
}

func NewJokeService(log *logger.Logger, stories repos.StoryRepo, jokes repos.JokeRepo, runner PipelineRunner) JokeService {
	return &jokeService{
		log:     log.With("service", "JokeService"),
		stories: stories,
		jokes:   jokes,
		runner:  runner,
	}
}

func (s *jokeService) RequestJoke(ctx context.Context, storyID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return pkgerrors.ErrUnauthorized
	}
	story, err := s.stories.GetByID(ctx, nil, storyID)
	if err != nil {
		return err
	}
	if story.OwnerUserID != rd.UserID {
		return pkgerrors.ErrNotFound
	}
	if !story.TranscriptReady() {
		return fmt.Errorf("%w: transcript not ready", pkgerrors.ErrDependencyNotReady)
	}

	// Atomic check-and-set closes the race between two concurrent triggers;
	// the client-side flag check alone is advisory.
	if err := s.stories.BeginGeneration(ctx, nil, story.ID, repos.FlagJoke); err != nil {
		return err
	}
	story.GeneratingJoke = true

	go s.runner.RunJoke(context.Background(), story)
	return nil
}

func (s *jokeService) DeleteJoke(ctx context.Context, jokeID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return pkgerrors.ErrUnauthorized
	}
	joke, err := s.jokes.GetByID(ctx, nil, jokeID)
	if err != nil {
		return err
	}
	if joke.OwnerUserID != rd.UserID {
		return pkgerrors.ErrNotFound
	}
	return s.jokes.Delete(ctx, nil, joke.ID)
}
