package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storyjam-backend/internal/services"
)

type JokeHandler struct {
	jokeService services.JokeService
}

func NewJokeHandler(jokeService services.JokeService) *JokeHandler {
	return &JokeHandler{jokeService: jokeService}
}

func (jh *JokeHandler) Request(c *gin.Context) {
	storyID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	if err := jh.jokeService.RequestJoke(c.Request.Context(), storyID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"generating": true})
}

func (jh *JokeHandler) Delete(c *gin.Context) {
	jokeID, err := pathUUID(c, "jokeId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	if err := jh.jokeService.DeleteJoke(c.Request.Context(), jokeID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": jokeID})
}
