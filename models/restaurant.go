package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the business status reported by the provider.
type Status string

// StatusUnconfirmed is stored when the provider omits the business status.
const StatusUnconfirmed Status = "unconfirmed"

// RawRecord is one row of a Genrestrt* data-set exactly as the provider returns it.
// Every field may be null at the source, so strings are pointers and numeric
// columns use Decimal, which accepts both quoted and bare numbers.
type RawRecord struct {
	CountyName         *string `json:"SIGUN_NM"`
	CountyCode         *string `json:"SIGUN_CD"`
	BusinessName       *string `json:"BIZPLC_NM"`
	LicenseDate        *string `json:"LICENSG_DE"`
	BusinessStatus     *string `json:"BSN_STATE_NM"`
	ClosedDate         *string `json:"CLSBIZ_DE"`
	SiteArea           Decimal `json:"LOCPLC_AR"`
	GradeFacilityType  *string `json:"GRAD_FACLT_DIV_NM"`
	MaleEmployees      Decimal `json:"MALE_ENFLPSN_CNT"`
	Year               Decimal `json:"YY"`
	MultiUseBusiness   *string `json:"MULTI_USE_BIZESTBL_YN"`
	GradeType          *string `json:"GRAD_DIV_NM"`
	TotalFacilityScale Decimal `json:"TOT_FACLT_SCALE"`
	FemaleEmployees    Decimal `json:"FEMALE_ENFLPSN_CNT"`
	SurroundingsType   *string `json:"BSNSITE_CIRCUMFR_DIV_NM"`
	IndustryType       *string `json:"SANITTN_INDUTYPE_NM"`
	BusinessCondition  *string `json:"SANITTN_BIZCOND_NM"`
	TotalEmployees     Decimal `json:"TOT_EMPLY_CNT"`
	LotAddress         *string `json:"REFINE_LOTNO_ADDR"`
	RoadAddress        *string `json:"REFINE_ROADNM_ADDR"`
	ZipCode            *string `json:"REFINE_ZIP_CD"`
	Longitude          Decimal `json:"REFINE_WGS84_LOGT"`
	Latitude           Decimal `json:"REFINE_WGS84_LAT"`
}

// Restaurant is the canonical record persisted to the restaurant table.
type Restaurant struct {
	NameAddress string
	CountyName  string
	Name        string
	Type        string
	Address     string
	Status      Status
	Lat         float64
	Lon         float64
	Score       int
}

// Decimal is a nullable number that the provider sends either as a JSON string
// ("37.2747") or as a JSON number. Null, "" and unparseable text are all invalid, as are NaN and infinities.
type Decimal struct {
	Value float64
	Valid bool
	Raw   string
}

// NewDecimal returns a valid Decimal holding v.
func NewDecimal(v float64) Decimal {
	return Decimal{Value: v, Valid: true, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	*d = Decimal{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	text := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decimal: %w", err)
		}
		text = strings.TrimSpace(s)
	}
	d.Raw = text
	if text == "" {
		return nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	d.Value = v
	d.Valid = true
	return nil
}

// String returns the text the provider sent, or "" for null.
func (d Decimal) String() string {
	return d.Raw
}

// StringValue dereferences a nullable provider field.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
