package services

import (
	"strings"
	"unicode"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

// nullText is what a null provider field contributes to the composite key.
// Keys already stored by earlier syncs were built this way, so it must not change.
const nullText = "null"

// Normalizer transforms RawRecords into canonical Restaurants.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeAll maps every raw record and drops the ones NormalizeRecord rejects.
// Input order is preserved.
func (n *Normalizer) NormalizeAll(dataset string, raw []*models.RawRecord) []*models.Restaurant {
	result := make([]*models.Restaurant, 0, len(raw))
	for _, r := range raw {
		if restaurant, ok := NormalizeRecord(r); ok {
			result = append(result, restaurant)
		}
	}

	n.logger.Info("[normalizer] %s: normalized %d → %d restaurants (dropped %d)",
		dataset, len(raw), len(result), len(raw)-len(result))
	return result
}

// NormalizeRecord builds the canonical Restaurant for one raw record.
// It returns false when the road address, latitude or longitude is missing.
func NormalizeRecord(r *models.RawRecord) (*models.Restaurant, bool) {
	if r == nil || r.RoadAddress == nil || !r.Latitude.Valid || !r.Longitude.Valid {
		return nil, false
	}

	name := models.StringValue(r.BusinessName)
	address := *r.RoadAddress
	bizType := models.StringValue(r.BusinessCondition)

	return &models.Restaurant{
		NameAddress: NameAddressKey(r.BusinessName, r.RoadAddress, r.BusinessCondition),
		CountyName:  models.StringValue(r.CountyName),
		Name:        name,
		Type:        bizType,
		Address:     address,
		Status:      normaliseStatus(r.BusinessStatus),
		Lat:         r.Latitude.Value,
		Lon:         r.Longitude.Value,
		Score:       0,
	}, true
}

// NameAddressKey concatenates name, address and type, then removes every whitespace
// character. A nil part contributes "null".
func NameAddressKey(name, address, bizType *string) string {
	var sb strings.Builder
	for _, part := range []*string{name, address, bizType} {
		if part == nil {
			sb.WriteString(nullText)
			continue
		}
		sb.WriteString(*part)
	}
	return stripWhitespace(sb.String())
}

// stripWhitespace removes the characters matched by the regular-expression class \s
// used to build the keys already stored: Unicode White_Space plus U+FEFF, but not U+0085.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if isKeySpace(r) {
			return -1
		}
		return r
	}, s)
}

func isKeySpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

func normaliseStatus(s *string) models.Status {
	if s == nil || *s == "" {
		return models.StatusUnconfirmed
	}
	return models.Status(*s)
}
