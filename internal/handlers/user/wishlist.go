package user

import (
	"net/http"

	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

func (h *Handler) userID(c *gin.Context) (gocql.UUID, bool) {
	id, err := catalog.ParseID(middleware.UserID(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session invalide"})
		return gocql.UUID{}, false
	}
	return id, true
}

func (h *Handler) GetWishlist(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	products, err := h.Catalog.Wishlist(c.Request.Context(), uid)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	pid, ok := handlers.ParamID(c, "product_id")
	if !ok {
		return
	}
	if err := h.Catalog.AddToWishlist(c.Request.Context(), uid, pid); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ajouté à la wishlist"})
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	pid, ok := handlers.ParamID(c, "product_id")
	if !ok {
		return
	}
	if err := h.Catalog.RemoveFromWishlist(c.Request.Context(), uid, pid); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Retiré de la wishlist"})
}

// SyncWishlist fusionne la wishlist invité conservée côté navigateur.
func (h *Handler) SyncWishlist(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var in struct {
		ProductIDs []gocql.UUID `json:"product_ids"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	products, err := h.Catalog.SyncWishlist(c.Request.Context(), uid, in.ProductIDs)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
