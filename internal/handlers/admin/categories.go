package admin

import (
	"net/http"

	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	category, err := h.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in models.CategoryInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	category, err := h.Catalog.CreateCategory(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var in models.CategoryInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	category, err := h.Catalog.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}

func (h *Handler) UploadCategoryImage(c *gin.Context) {
	h.uploadCategoryImage(c, false)
}

func (h *Handler) UploadCategoryCover(c *gin.Context) {
	h.uploadCategoryImage(c, true)
}

func (h *Handler) uploadCategoryImage(c *gin.Context, cover bool) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	files, closeAll, err := handlers.Uploads(c, "image")
	defer closeAll()
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	category, err := h.Catalog.UploadCategoryImage(c.Request.Context(), id, files[0], cover)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}
