package types

import (
	"time"

	"github.com/google/uuid"
)

// Joke is a child of a Story. Rows are insert-only: a successful joke stage
// creates one, the owner can delete one, nothing mutates one in place.
type Joke struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StoryID     uuid.UUID `gorm:"type:uuid;not null;index" json:"story_id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Text        string    `gorm:"column:text;not null" json:"text"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Joke) TableName() string { return "joke" }
