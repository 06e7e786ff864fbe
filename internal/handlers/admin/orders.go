package admin

import (
	"fmt"
	"net/http"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ListOrders accepte ?status= pour filtrer.
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.Orders.List(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var in struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if !handlers.BindJSON(c, &in) {
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ShipOrder soumet la commande à Shiprocket; un envoi déjà attribué est renvoyé tel quel.
func (h *Handler) ShipOrder(c *gin.Context) {
	if h.Shipper == nil {
		handlers.RespondError(c, errs.Upstream("shiprocket", fmt.Errorf("transporteur non configuré")))
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	info, err := h.Shipper.Ship(c.Request.Context(), *o)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	log.Info().Str("order_id", o.ID).Str("awb", info.AWBCode).Msg("🚚 Expédition créée")
	c.JSON(http.StatusOK, gin.H{"order_id": o.ID, "shipment": info})
}

func (h *Handler) ResendInvoice(c *gin.Context) {
	if h.Invoicer == nil {
		handlers.RespondError(c, errs.Upstream("email", fmt.Errorf("envoi d'emails non configuré")))
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if err := h.Invoicer.SendInvoice(c.Request.Context(), *o); err != nil {
		handlers.RespondError(c, errs.Upstream("email", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Facture envoyée", "email": o.UserEmail})
}

func (h *Handler) OrderTracking(c *gin.Context) {
	if h.Shipper == nil {
		handlers.RespondError(c, errs.Upstream("shiprocket", fmt.Errorf("transporteur non configuré")))
		return
	}
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	tracking, err := h.Shipper.Track(c.Request.Context(), *o)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handlers.TrackingResponse(*o, tracking))
}
