package admin

import (
	"context"
	"net/http"

	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Catalog.ListProducts(c.Request.Context(), nil)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	p, err := h.Catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var in models.ProductInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	p, err := h.Catalog.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// UploadProductImages lit le champ multipart "images".
func (h *Handler) UploadProductImages(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	files, closeAll, err := handlers.Uploads(c, "images")
	defer closeAll()
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	p, err := h.Catalog.UploadProductImages(c.Request.Context(), id, files)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SetInventory(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Count *int `json:"inventory_count" binding:"required,gte=0"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	p, err := h.Catalog.SetInventory(c.Request.Context(), id, *in.Count)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ProductPrice alimente l'audit des changements de prix.
func (h *Handler) ProductPrice(ctx context.Context, rawID string) (float64, error) {
	id, err := catalog.ParseID(rawID)
	if err != nil {
		return 0, err
	}
	p, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}
