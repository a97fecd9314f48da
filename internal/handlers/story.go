package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/pipeline"
	"github.com/yungbote/storyjam-backend/internal/services"
)

type StoryHandler struct {
	storyService services.StoryService
}

func NewStoryHandler(storyService services.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

func (sh *StoryHandler) Create(c *gin.Context) {
	var req struct {
		AudioFileKey string `json:"audio_file_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	story, err := sh.storyService.CreateStory(c.Request.Context(), req.AudioFileKey)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"story":    story,
		"progress": pipeline.ProjectProgress(story, 0),
	})
}

func (sh *StoryHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	view, err := sh.storyService.GetStory(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"story":    view.Story,
		"jokes":    view.Jokes,
		"images":   view.Images,
		"progress": pipeline.ProjectProgress(view.Story, int64(len(view.Jokes))),
	})
}

func (sh *StoryHandler) List(c *gin.Context) {
	items, err := sh.storyService.ListStories(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"stories": items})
}

func (sh *StoryHandler) Delete(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	if err := sh.storyService.DeleteStory(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
