package user

import (
	"net/http"

	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/middleware"
	"wearxture_back_end/internal/support"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateSupportQuery(c *gin.Context) {
	var in support.CreateInput
	if !handlers.BindJSON(c, &in) {
		return
	}
	q, err := h.Support.Create(c.Request.Context(), middleware.Email(c), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) ListSupportQueries(c *gin.Context) {
	list, err := h.Support.ListForCustomer(c.Request.Context(), middleware.Email(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": list, "count": len(list)})
}
