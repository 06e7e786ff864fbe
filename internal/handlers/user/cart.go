package user

import (
	"fmt"
	"net/http"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	errNoCart = errs.Upstream("redis", fmt.Errorf("panier indisponible"))
	errNoFeed = fmt.Errorf("suivi en direct indisponible")
)

func (h *Handler) GetCart(c *gin.Context) {
	if h.Carts == nil {
		handlers.RespondError(c, errNoCart)
		return
	}
	cart, err := h.Carts.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ReplaceCart remplace tout le panier; les quantités d'un même article sont additionnées.
func (h *Handler) ReplaceCart(c *gin.Context) {
	if h.Carts == nil {
		handlers.RespondError(c, errNoCart)
		return
	}
	var in struct {
		Items []models.CartItem `json:"items" binding:"dive"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	cart := &models.Cart{UserID: middleware.UserID(c), Items: in.Items}
	if err := h.Carts.Save(c.Request.Context(), cart); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if h.Carts == nil {
		handlers.RespondError(c, errNoCart)
		return
	}
	if err := h.Carts.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
