package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/types"
)

func TestRequestImageCreatesPlaceholderAndLaunchesStage(t *testing.T) {
	owner := uuid.New()
	story := readyStory(owner)
	images := newStubImageRepo()
	runner := newStubRunner()
	svc := NewImageService(testLogger(t), newStubStoryRepo(story), images, runner)

	img, err := svc.RequestImage(authedContext(owner), story.ID)
	if err != nil {
		t.Fatalf("RequestImage: %v", err)
	}
	runner.wait(t, "image")

	if !img.Generating {
		t.Fatalf("placeholder must start generating")
	}
	if img.StoryID != story.ID || img.OwnerUserID != owner {
		t.Fatalf("placeholder parentage: %+v", img)
	}
	if _, ok := images.images[img.ID]; !ok {
		t.Fatalf("placeholder never persisted")
	}
}

func TestRequestImageRejectsConcurrentTrigger(t *testing.T) {
	owner := uuid.New()
	story := readyStory(owner)
	images := newStubImageRepo()
	images.createErr = pkgerrors.ErrGenerationInFlight
	runner := newStubRunner()
	svc := NewImageService(testLogger(t), newStubStoryRepo(story), images, runner)

	_, err := svc.RequestImage(authedContext(owner), story.ID)
	if !errors.Is(err, pkgerrors.ErrGenerationInFlight) {
		t.Fatalf("want=%v got=%v", pkgerrors.ErrGenerationInFlight, err)
	}
	if runner.imgRuns != 0 {
		t.Fatalf("stage launched despite duplicate rejection")
	}
}

func TestRequestImageRequiresTranscript(t *testing.T) {
	owner := uuid.New()
	story := &types.Story{ID: uuid.New(), OwnerUserID: owner, GeneratingTranscript: true}
	svc := NewImageService(testLogger(t), newStubStoryRepo(story), newStubImageRepo(), newStubRunner())

	_, err := svc.RequestImage(authedContext(owner), story.ID)
	if !errors.Is(err, pkgerrors.ErrDependencyNotReady) {
		t.Fatalf("want=%v got=%v", pkgerrors.ErrDependencyNotReady, err)
	}
}

func TestListImagesOwnerScoped(t *testing.T) {
	owner := uuid.New()
	story := readyStory(owner)
	img := &types.StoryImage{ID: uuid.New(), StoryID: story.ID, OwnerUserID: owner}
	svc := NewImageService(testLogger(t), newStubStoryRepo(story), newStubImageRepo(img), newStubRunner())

	got, err := svc.ListImages(authedContext(owner), story.ID)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(got) != 1 || got[0].ID != img.ID {
		t.Fatalf("images: got=%v", got)
	}

	if _, err := svc.ListImages(authedContext(uuid.New()), story.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign list: want=%v got=%v", pkgerrors.ErrNotFound, err)
	}
}
