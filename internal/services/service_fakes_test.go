package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storyjam-backend/internal/clients/pinecone"
	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/requestdata"
	"github.com/yungbote/storyjam-backend/internal/sse"
	"github.com/yungbote/storyjam-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func authedContext(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

// -------------------- repos --------------------

type stubStoryRepo struct {
	mu       sync.Mutex
	stories  map[uuid.UUID]*types.Story
	created  []*types.Story
	deleted  []uuid.UUID
	beginErr error
	began    []string
}

func newStubStoryRepo(stories ...*types.Story) *stubStoryRepo {
	r := &stubStoryRepo{stories: map[uuid.UUID]*types.Story{}}
	for _, s := range stories {
		r.stories[s.ID] = s
	}
	return r
}

func (r *stubStoryRepo) Create(ctx context.Context, tx *gorm.DB, story *types.Story) (*types.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stories[story.ID] = story
	r.created = append(r.created, story)
	return story, nil
}

func (r *stubStoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStoryRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Story
	for _, s := range r.stories {
		if s.OwnerUserID == ownerUserID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubStoryRepo) PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (r *stubStoryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stories, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubStoryRepo) BeginGeneration(ctx context.Context, tx *gorm.DB, id uuid.UUID, flagColumn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beginErr != nil {
		return r.beginErr
	}
	r.began = append(r.began, flagColumn)
	return nil
}

type stubJokeRepo struct {
	mu      sync.Mutex
	jokes   map[uuid.UUID]*types.Joke
	deleted []uuid.UUID
}

func newStubJokeRepo(jokes ...*types.Joke) *stubJokeRepo {
	r := &stubJokeRepo{jokes: map[uuid.UUID]*types.Joke{}}
	for _, j := range jokes {
		r.jokes[j.ID] = j
	}
	return r
}

func (r *stubJokeRepo) Create(ctx context.Context, tx *gorm.DB, joke *types.Joke) (*types.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jokes[joke.ID] = joke
	return joke, nil
}

func (r *stubJokeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jokes[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *stubJokeRepo) ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Joke
	for _, j := range r.jokes {
		if j.StoryID == storyID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubJokeRepo) CountByStories(ctx context.Context, tx *gorm.DB, storyIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uuid.UUID]int64{}
	for _, j := range r.jokes {
		out[j.StoryID]++
	}
	return out, nil
}

func (r *stubJokeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jokes, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubImageRepo struct {
	mu        sync.Mutex
	images    map[uuid.UUID]*types.StoryImage
	createErr error
}

func newStubImageRepo(images ...*types.StoryImage) *stubImageRepo {
	r := &stubImageRepo{images: map[uuid.UUID]*types.StoryImage{}}
	for _, img := range images {
		r.images[img.ID] = img
	}
	return r
}

func (r *stubImageRepo) Create(ctx context.Context, tx *gorm.DB, image *types.StoryImage) (*types.StoryImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.images[image.ID] = image
	return image, nil
}

func (r *stubImageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StoryImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	cp := *img
	return &cp, nil
}

func (r *stubImageRepo) ListByStory(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.StoryImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.StoryImage
	for _, img := range r.images {
		if img.StoryID == storyID {
			cp := *img
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubImageRepo) PatchFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// -------------------- pipeline runner --------------------

// stubRunner records stage launches. Services start the runner in a fresh
// goroutine, so tests wait on the signal channel.
type stubRunner struct {
	mu       sync.Mutex
	runs     int
	jokeRuns int
	imgRuns  int
	signal   chan string
}

func newStubRunner() *stubRunner {
	return &stubRunner{signal: make(chan string, 8)}
}

func (r *stubRunner) Run(ctx context.Context, storyID, imageID uuid.UUID) {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	r.signal <- "run"
}

func (r *stubRunner) RunJoke(ctx context.Context, story *types.Story) {
	r.mu.Lock()
	r.jokeRuns++
	r.mu.Unlock()
	r.signal <- "joke"
}

func (r *stubRunner) RunImage(ctx context.Context, story *types.Story, imageID uuid.UUID) {
	r.mu.Lock()
	r.imgRuns++
	r.mu.Unlock()
	r.signal <- "image"
}

func (r *stubRunner) wait(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.signal:
		if got != want {
			t.Fatalf("runner stage: want=%s got=%s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner stage %s never launched", want)
	}
}

// -------------------- infra --------------------

type stubBucket struct{}

func (stubBucket) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	return nil
}
func (stubBucket) DeleteFile(ctx context.Context, key string) error { return nil }
func (stubBucket) GetPublicURL(key string) string                   { return "https://cdn.test/" + key }
func (stubBucket) GSURI(key string) string                          { return "gs://test/" + key }
func (stubBucket) SignedUploadURL(key string, contentType string, ttl time.Duration) (string, error) {
	return "https://signed.test/" + key, nil
}

type stubVectorStore struct {
	mu      sync.Mutex
	deleted []string
	matches []pinecone.Match
	lastQ   struct {
		vec    []float32
		topK   int
		filter map[string]any
	}
	queryErr error
}

func (v *stubVectorStore) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	return nil
}

func (v *stubVectorStore) Query(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.Match, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.queryErr != nil {
		return nil, v.queryErr
	}
	v.lastQ.vec = q
	v.lastQ.topK = topK
	v.lastQ.filter = filter
	return v.matches, nil
}

func (v *stubVectorStore) Delete(ctx context.Context, namespace string, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleted = append(v.deleted, ids...)
	return nil
}

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

type stubEmbedCache struct {
	entries map[string][]float32
	sets    []string
}

func (c *stubEmbedCache) GetEmbedding(ctx context.Context, text string) ([]float32, bool) {
	vec, ok := c.entries[text]
	return vec, ok
}

func (c *stubEmbedCache) SetEmbedding(ctx context.Context, text string, vec []float32) {
	if c.entries == nil {
		c.entries = map[string][]float32{}
	}
	c.entries[text] = vec
	c.sets = append(c.sets, text)
}

type stubNotifier struct {
	mu     sync.Mutex
	events []sse.SSEEvent
}

func (n *stubNotifier) Notify(ctx context.Context, userID uuid.UUID, event sse.SSEEvent, data any) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *stubNotifier) has(event sse.SSEEvent) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}
