package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wearxture_back_end/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondError(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", errs.Validation("prix invalide"), http.StatusBadRequest, "données invalides: prix invalide"},
		{"wrapped validation", fmt.Errorf("produit p1: %w", errs.Validation("stock négatif")), http.StatusBadRequest, "produit p1: données invalides: stock négatif"},
		{"not found", fmt.Errorf("commande WX1: %w", errs.ErrNotFound), http.StatusNotFound, "commande WX1: ressource introuvable"},
		{"upstream", errs.Upstream("shiprocket", errors.New("timeout")), http.StatusBadGateway, ""},
		{"internal is masked", errors.New("connexion scylla perdue"), http.StatusInternalServerError, "Erreur interne"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

func TestRespondErrorListsShortages(t *testing.T) {
	err := &errs.InsufficientInventoryError{Shortages: []errs.Shortage{
		{ProductID: "p1", Name: "Kurta", Available: 1, Requested: 3},
	}}
	status, body := respond(t, fmt.Errorf("checkout: %w", err))

	assert.Equal(t, http.StatusConflict, status)
	shortages, ok := body["shortages"].([]any)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	assert.Equal(t, "p1", shortages[0].(map[string]any)["product_id"])
}
