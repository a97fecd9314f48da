package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Story is the central entity: one recorded audio artifact plus the content
// fields derived from it. Each derived field is nullable until its stage
// commits; the generating_* flags mark stages still in flight. A cleared flag
// with a null field means the stage failed terminally (or was skipped because
// transcription failed) — callers distinguish that from "in progress" via the
// flags, never via field presence alone.
type Story struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	// Immutable once set.
	AudioFileKey string `gorm:"column:audio_file_key;not null" json:"audio_file_key"`
	AudioFileURL string `gorm:"column:audio_file_url" json:"audio_file_url"`

	Transcript  *string `gorm:"column:transcript" json:"transcript,omitempty"`
	Title       *string `gorm:"column:title" json:"title,omitempty"`
	Summary     *string `gorm:"column:summary" json:"summary,omitempty"`
	Protagonist *string `gorm:"column:protagonist" json:"protagonist,omitempty"`
	Setting     *string `gorm:"column:setting" json:"setting,omitempty"`
	Conflict    *string `gorm:"column:conflict" json:"conflict,omitempty"`

	// Fixed-dimension embedding of the transcript, overwritten on each
	// regeneration. Mirrored into the vector index on commit.
	Embedding datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"embedding,omitempty"`

	GeneratingTranscript bool `gorm:"column:generating_transcript;not null;default:false" json:"generating_transcript"`
	// Covers summary as well; the two are produced by one stage.
	GeneratingTitle     bool `gorm:"column:generating_title;not null;default:false" json:"generating_title"`
	GeneratingDetails   bool `gorm:"column:generating_details;not null;default:false" json:"generating_details"`
	GeneratingJoke      bool `gorm:"column:generating_joke;not null;default:false" json:"generating_joke"`
	GeneratingEmbedding bool `gorm:"column:generating_embedding;not null;default:false" json:"generating_embedding"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Story) TableName() string { return "story" }

// TranscriptReady reports whether downstream stages may run.
func (s *Story) TranscriptReady() bool {
	return !s.GeneratingTranscript && s.Transcript != nil && *s.Transcript != ""
}
