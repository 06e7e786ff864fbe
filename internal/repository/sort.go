package repository

import (
	"sort"

	"wearxture_back_end/internal/models"
)

// ScyllaDB ne trie que sur les clés de clustering: les listes sont triées ici.

func sortProducts(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}

func sortCategories(cs []models.Category) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}

func sortReels(rs []models.Reel) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].DisplayOrder != rs[j].DisplayOrder {
			return rs[i].DisplayOrder < rs[j].DisplayOrder
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}

func sortOrders(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}

func sortUsers(us []models.User) {
	sort.SliceStable(us, func(i, j int) bool { return us[i].CreatedAt.After(us[j].CreatedAt) })
}

func sortSupport(qs []models.SupportQuery) {
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].CreatedAt.After(qs[j].CreatedAt) })
}
