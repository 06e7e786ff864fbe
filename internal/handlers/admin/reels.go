package admin

import (
	"net/http"

	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// ListReels inclut les reels inactifs.
func (h *Handler) ListReels(c *gin.Context) {
	reels, err := h.Catalog.ListReels(c.Request.Context(), false)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reels": reels})
}

func (h *Handler) GetReel(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	reel, err := h.Catalog.GetReel(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reel)
}

func (h *Handler) CreateReel(c *gin.Context) {
	var in models.ReelInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	reel, err := h.Catalog.CreateReel(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reel)
}

func (h *Handler) UpdateReel(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var in models.ReelInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	reel, err := h.Catalog.UpdateReel(c.Request.Context(), id, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reel)
}

func (h *Handler) DeleteReel(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteReel(c.Request.Context(), id); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reel supprimé"})
}

// UploadReelVideo lit le champ multipart "video".
func (h *Handler) UploadReelVideo(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	files, closeAll, err := handlers.Uploads(c, "video")
	defer closeAll()
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	reel, err := h.Catalog.UploadReelVideo(c.Request.Context(), id, files[0])
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reel)
}
