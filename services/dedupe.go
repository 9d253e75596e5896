package services

import (
	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// Dedupe keeps the first Restaurant seen for each NameAddress and discards the
// rest, even when later duplicates carry different values. Survivors keep their
// first-seen order.
func Dedupe(records []*models.Restaurant) []*models.Restaurant {
	seen := utils.NewKeySet(len(records))
	result := make([]*models.Restaurant, 0, len(records))

	for _, r := range records {
		if !seen.Add(r.NameAddress) {
			continue
		}
		result = append(result, r)
	}
	return result
}
