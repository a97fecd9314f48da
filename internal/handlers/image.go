package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storyjam-backend/internal/services"
)

type ImageHandler struct {
	imageService services.ImageService
}

func NewImageHandler(imageService services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (ih *ImageHandler) Request(c *gin.Context) {
	storyID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	image, err := ih.imageService.RequestImage(c.Request.Context(), storyID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"image": image})
}

func (ih *ImageHandler) List(c *gin.Context) {
	storyID, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	images, err := ih.imageService.ListImages(c.Request.Context(), storyID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"images": images})
}
