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

// Generation flag columns a caller may check-and-set. Column names are
// whitelisted here because they are interpolated into SQL.
const (
	FlagTranscript = "generating_transcript"
	FlagTitle      = "generating_title"
	FlagDetails    = "generating_details"
	FlagJoke       = "generating_joke"
	FlagEmbedding  = "generating_embedding"
)

var flagColumns = map[string]bool{
	FlagTranscript: true,
	FlagTitle:      true,
	FlagDetails:    true,
	FlagJoke:       true,
	FlagEmbedding:  true,
}

type StoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, story *types.Story) (*types.Story, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Story, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Story, error)
	// PatchFields applies a partial update; unspecified columns are untouched.
	PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// BeginGeneration atomically flips flagColumn from false to true. It
	// returns ErrGenerationInFlight when the flag was already set, which is
	// how duplicate triggers are rejected without a read-then-write race.
	BeginGeneration(ctx context.Context, tx *gorm.DB, id uuid.UUID, flagColumn string) error
}

type storyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryRepo(db *gorm.DB, baseLog *logger.Logger) StoryRepo {
	return &storyRepo{
		db:  db,
		log: baseLog.With("repo", "StoryRepo"),
	}
}

func (r *storyRepo) Create(ctx context.Context, tx *gorm.DB, story *types.Story) (*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if story == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

func (r *storyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, pkgerrors.ErrNotFound
	}
	var story types.Story
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Story
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storyRepo) PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Story{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *storyRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Story{}).Error
}

func (r *storyRepo) BeginGeneration(ctx context.Context, tx *gorm.DB, id uuid.UUID, flagColumn string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return pkgerrors.ErrNotFound
	}
	if !flagColumns[flagColumn] {
		return pkgerrors.ErrInvalidArgument
	}
	res := transaction.WithContext(ctx).
		Model(&types.Story{}).
		Where("id = ? AND "+flagColumn+" = false", id).
		Updates(map[string]interface{}{
			flagColumn:   true,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrGenerationInFlight
	}
	return nil
}
