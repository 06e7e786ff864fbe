package user

import (
	"fmt"
	"net/http"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	customer := orders.Customer{UserID: middleware.UserID(c), Email: middleware.Email(c)}
	result, err := h.Orders.Checkout(c.Request.Context(), customer, req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.Orders.ListForCustomer(c.Request.Context(), middleware.Email(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

func (h *Handler) order(c *gin.Context) (*models.Order, bool) {
	o, err := h.Orders.GetForCustomer(c.Request.Context(), middleware.Email(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return nil, false
	}
	return o, true
}

func (h *Handler) GetOrder(c *gin.Context) {
	if o, ok := h.order(c); ok {
		c.JSON(http.StatusOK, o)
	}
}

func (h *Handler) CancelOrder(c *gin.Context) {
	o, err := h.Orders.CancelForCustomer(c.Request.Context(), middleware.Email(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Invoice renvoie la facture PDF en pièce jointe.
func (h *Handler) Invoice(c *gin.Context) {
	o, ok := h.order(c)
	if !ok {
		return
	}
	if h.Invoices == nil {
		handlers.RespondError(c, errs.Upstream("pdf", fmt.Errorf("génération de facture indisponible")))
		return
	}
	pdf, err := h.Invoices.InvoicePDF(c.Request.Context(), *o)
	if err != nil {
		handlers.RespondError(c, errs.Upstream("pdf", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice_%s.pdf"`, o.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) Tracking(c *gin.Context) {
	o, ok := h.order(c)
	if !ok {
		return
	}
	if h.Tracker == nil {
		if !o.Shipment.Submitted() {
			handlers.RespondError(c, fmt.Errorf("commande %s non expédiée: %w", o.ID, errs.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": o.ID, "shipment": o.Shipment, "order_status": o.OrderStatus})
		return
	}
	tracking, err := h.Tracker.Track(c.Request.Context(), *o)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handlers.TrackingResponse(*o, tracking))
}
