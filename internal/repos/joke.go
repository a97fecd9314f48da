package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/types"
)

type JokeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, joke *types.Joke) (*types.Joke, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Joke, error)
	ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Joke, error)
	CountByStories(ctx context.Context, tx *gorm.DB, storyIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type jokeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJokeRepo(db *gorm.DB, baseLog *logger.Logger) JokeRepo {
	return &jokeRepo{
		db:  db,
		log: baseLog.With("repo", "JokeRepo"),
	}
}

func (r *jokeRepo) Create(ctx context.Context, tx *gorm.DB, joke *types.Joke) (*types.Joke, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if joke == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(joke).Error; err != nil {
		return nil, err
	}
	return joke, nil
}

func (r *jokeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Joke, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, pkgerrors.ErrNotFound
	}
	var joke types.Joke
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&joke).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &joke, nil
}

func (r *jokeRepo) ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Joke, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Joke
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

func (r *jokeRepo) CountByStories(ctx context.Context, tx *gorm.DB, storyIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[uuid.UUID]int64, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		StoryID uuid.UUID
		N       int64
	}
	err := transaction.WithContext(ctx).
		Model(&types.Joke{}).
		Select("story_id, count(*) as n").
		Where("story_id IN ?", storyIDs).
		Group("story_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StoryID] = row.N
	}
	return out, nil
}

func (r *jokeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Joke{}).Error
}
