package handlers

import (
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
)

// TrackingResponse réunit la commande et le suivi transporteur.
func TrackingResponse(o models.Order, t *shipping.Tracking) gin.H {
	return gin.H{
		"order_id":          o.ID,
		"order_status":      o.OrderStatus,
		"awb_code":          t.AWBCode,
		"courier_name":      o.Shipment.CourierName,
		"current_status":    t.CurrentStatus,
		"estimated_arrival": t.EstimatedArrival,
		"tracking_url":      t.TrackURL,
		"activities":        t.Activities,
	}
}
