package types

import (
	"time"

	"github.com/google/uuid"
)

// StoryImage is a child of a Story. A row is pre-created with generating=true
// so the client can render a placeholder against a concrete id, then patched
// exactly once when the file lands (or the stage fails terminally). A partial
// unique index on (story_id) WHERE generating guarantees at most one image is
// in flight per story; see db.PostgresService.AutoMigrateAll.
type StoryImage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoryID     uuid.UUID `gorm:"type:uuid;not null;index" json:"story_id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	Description  string `gorm:"column:description" json:"description"`
	ImageFileKey string `gorm:"column:image_file_key" json:"image_file_key"`
	ImageFileURL string `gorm:"column:image_file_url" json:"image_file_url"`

	Generating bool `gorm:"column:generating;not null;default:false" json:"generating"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StoryImage) TableName() string { return "story_image" }
