package catalog

import (
	"context"
	"strings"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/rs/zerolog/log"
)

const DefaultSearchLimit = 20

// Search interroge Elasticsearch puis se replie sur un filtrage en mémoire.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.Validation("paramètre q obligatoire")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if s.index != nil {
		ids, err := s.index.Search(ctx, query, limit)
		if err == nil {
			out := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				p, err := s.products.Get(ctx, id)
				if err != nil {
					continue
				}
				out = append(out, *p)
			}
			return out, nil
		}
		log.Warn().Err(err).Msg("⚠️ Recherche Elasticsearch indisponible, filtrage local")
	}

	all, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]models.Product, 0, limit)
	for _, p := range all {
		if matches(p, needle) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func matches(p models.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
