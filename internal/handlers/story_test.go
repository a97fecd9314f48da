package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/services"
	"github.com/yungbote/storyjam-backend/internal/types"
)

type fakeStoryService struct {
	createOut *types.Story
	createErr error
	getOut    *services.StoryView
	getErr    error
	listOut   []services.StoryListItem
	deleteErr error
}

func (f *fakeStoryService) CreateStory(ctx context.Context, audioFileKey string) (*types.Story, error) {
	return f.createOut, f.createErr
}

func (f *fakeStoryService) GetStory(ctx context.Context, id uuid.UUID) (*services.StoryView, error) {
	return f.getOut, f.getErr
}

func (f *fakeStoryService) ListStories(ctx context.Context) ([]services.StoryListItem, error) {
	return f.listOut, nil
}

func (f *fakeStoryService) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return f.deleteErr
}

func storyRouter(svc services.StoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewStoryHandler(svc)
	r.POST("/stories", h.Create)
	r.GET("/stories/:id", h.Get)
	r.GET("/stories", h.List)
	r.DELETE("/stories/:id", h.Delete)
	return r
}

func TestStoryCreateReturns201WithProgress(t *testing.T) {
	story := &types.Story{
		ID:                   uuid.New(),
		OwnerUserID:          uuid.New(),
		AudioFileKey:         "users/u/audio/a.wav",
		GeneratingTranscript: true,
		GeneratingTitle:      true,
		GeneratingDetails:    true,
		GeneratingJoke:       true,
		GeneratingEmbedding:  true,
	}
	r := storyRouter(&fakeStoryService{createOut: story})

	req := httptest.NewRequest(http.MethodPost, "/stories", strings.NewReader(`{"audio_file_key":"users/u/audio/a.wav"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Story    types.Story `json:"story"`
		Progress struct {
			InProgress []string `json:"in_progress"`
			IsComplete bool     `json:"is_complete"`
		} `json:"progress"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Story.ID != story.ID {
		t.Fatalf("story id: want=%s got=%s", story.ID, body.Story.ID)
	}
	if body.Progress.IsComplete {
		t.Fatalf("fresh story cannot be complete")
	}
	if len(body.Progress.InProgress) != 5 {
		t.Fatalf("in_progress: want=5 fields got=%v", body.Progress.InProgress)
	}
}

func TestStoryGetMapsNotFound(t *testing.T) {
	r := storyRouter(&fakeStoryService{getErr: pkgerrors.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/stories/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", w.Code)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "not_found" {
		t.Fatalf("error code: want=not_found got=%q", body.Error.Code)
	}
}

func TestStoryGetRejectsMalformedID(t *testing.T) {
	r := storyRouter(&fakeStoryService{})

	req := httptest.NewRequest(http.MethodGet, "/stories/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
}

func TestStoryCreateMapsValidationError(t *testing.T) {
	r := storyRouter(&fakeStoryService{createErr: pkgerrors.ErrInvalidArgument})

	req := httptest.NewRequest(http.MethodPost, "/stories", strings.NewReader(`{"audio_file_key":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
}
