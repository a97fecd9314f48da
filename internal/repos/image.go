package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/types"
)

type ImageRepo interface {
	// Create inserts a placeholder row with generating=true. The partial
	// unique index idx_story_image_inflight rejects a second in-flight row
	// for the same story; that surfaces as ErrGenerationInFlight.
	Create(ctx context.Context, tx *gorm.DB, image *types.StoryImage) (*types.StoryImage, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoryImage, error)
	ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.StoryImage, error)
	PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type imageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo {
	return &imageRepo{
		db:  db,
		log: baseLog.With("repo", "ImageRepo"),
	}
}

func (r *imageRepo) Create(ctx context.Context, tx *gorm.DB, image *types.StoryImage) (*types.StoryImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if image == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(image).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.ErrGenerationInFlight
		}
		return nil, err
	}
	return image, nil
}

func (r *imageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoryImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, pkgerrors.ErrNotFound
	}
	var image types.StoryImage
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepo) ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.StoryImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoryImage
	if storyID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *imageRepo) PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.StoryImage{}).
		Where("id = ?", id).
		Updates(updates).Error
}
