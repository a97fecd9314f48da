package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/repos"
	"github.com/yungbote/storyjam-backend/internal/requestdata"
	"github.com/yungbote/storyjam-backend/internal/types"
)

type ImageService interface {
	// RequestImage pre-creates a placeholder record with generating=true and
	// launches the image stage against it. At most one image per story may be
	// in flight; a second trigger gets ErrGenerationInFlight.
	RequestImage(ctx context.Context, storyID uuid.UUID) (*types.StoryImage, error)
	ListImages(ctx context.Context, storyID uuid.UUID) ([]*types.StoryImage, error)
}

type imageService struct {
	log     *logger.Logger
	stories repos.StoryRepo
	images  repos.ImageRepo
	runner  PipelineRunner
}

func NewImageService(log *logger.Logger, stories repos.StoryRepo, images repos.ImageRepo, runner PipelineRunner) ImageService {
	return &imageService{
		log:     log.With("service", "ImageService"),
		stories: stories,
		images:  images,
		runner:  runner,
	}
}

func (s *imageService) RequestImage(ctx context.Context, storyID uuid.UUID) (*types.StoryImage, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	story, err := s.stories.GetByID(ctx, nil, storyID)
	if err != nil {
		return nil, err
	}
	if story.OwnerUserID != rd.UserID {
		return nil, pkgerrors.ErrNotFound
	}
	if !story.TranscriptReady() {
		return nil, fmt.Errorf("%w: transcript not ready", pkgerrors.ErrDependencyNotReady)
	}

	// The partial unique index on (story_id) WHERE generating makes this
	// insert the atomic duplicate-trigger check.
	image := &types.StoryImage{
		ID:          uuid.New(),
		StoryID:     story.ID,
		OwnerUserID: rd.UserID,
		Generating:  true,
	}
	if _, err := s.images.Create(ctx, nil, image); err != nil {
		return nil, err
	}

	go s.runner.RunImage(context.Background(), story, image.ID)
	return image, nil
}

func (s *imageService) ListImages(ctx context.Context, storyID uuid.UUID) ([]*types.StoryImage, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	story, err := s.stories.GetByID(ctx, nil, storyID)
	if err != nil {
		return nil, err
	}
	if story.OwnerUserID != rd.UserID {
		return nil, pkgerrors.ErrNotFound
	}
	return s.images.ListByStory(ctx, nil, story.ID)
}
