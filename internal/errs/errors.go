package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation            = errors.New("données invalides")
	ErrNotFound              = errors.New("ressource introuvable")
	ErrConflict              = errors.New("conflit")
	ErrInsufficientInventory = fmt.Errorf("stock insuffisant: %w", ErrConflict)
	ErrEmailTaken            = fmt.Errorf("email déjà utilisé: %w", ErrConflict)
	ErrInvalidTransition     = fmt.Errorf("transition de statut refusée: %w", ErrConflict)
	ErrUpstream              = errors.New("service externe indisponible")
	ErrUnauthorized          = errors.New("authentification requise")
	ErrForbidden             = errors.New("accès refusé")
)

// L'ordre compte: les erreurs dérivées de ErrConflict passent avant.
var errorMap = []struct {
	err    error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusConflict},
	{ErrUpstream, http.StatusBadGateway},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
}

// StatusCode retourne le code HTTP associé à err (500 par défaut).
func StatusCode(err error) int {
	for _, e := range errorMap {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Validation construit une erreur de validation lisible.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Upstream enveloppe une erreur d'un fournisseur externe.
func Upstream(provider string, err error) error {
	return fmt.Errorf("%w (%s): %v", ErrUpstream, provider, err)
}

// Shortage décrit une ligne de commande impossible à servir.
type Shortage struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

func (s Shortage) String() string {
	return fmt.Sprintf("produit %s (disponible %d, demandé %d)", s.ProductID, s.Available, s.Requested)
}

// InsufficientInventoryError regroupe toutes les lignes en rupture.
type InsufficientInventoryError struct {
	Shortages []Shortage
}

func (e *InsufficientInventoryError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, s.String())
	}
	return "stock insuffisant: " + strings.Join(parts, ", ")
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}
