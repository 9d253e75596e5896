package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

func str(s string) *string { return &s }

func validRaw() *models.RawRecord {
	return &models.RawRecord{
		CountyName:        str("수원시"),
		BusinessName:      str("스시 하루"),
		BusinessStatus:    str("영업"),
		BusinessCondition: str("일식"),
		RoadAddress:       str("경기도 수원시 팔달구 정조로 1"),
		Latitude:          models.NewDecimal(37.2747),
		Longitude:         models.NewDecimal(127.0286),
	}
}

func TestNormalizeRecord(t *testing.T) {
	got, ok := NormalizeRecord(validRaw())
	require.True(t, ok)

	assert.Equal(t, &models.Restaurant{
		NameAddress: "스시하루경기도수원시팔달구정조로1일식",
		CountyName:  "수원시",
		Name:        "스시 하루",
		Type:        "일식",
		Address:     "경기도 수원시 팔달구 정조로 1",
		Status:      "영업",
		Lat:         37.2747,
		Lon:         127.0286,
		Score:       0,
	}, got)
}

func TestNormalizeRecordDropsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RawRecord)
	}{
		{"null road address", func(r *models.RawRecord) { r.RoadAddress = nil }},
		{"null latitude", func(r *models.RawRecord) { r.Latitude = models.Decimal{} }},
		{"null longitude", func(r *models.RawRecord) { r.Longitude = models.Decimal{} }},
		{"NaN latitude", func(r *models.RawRecord) { _ = r.Latitude.UnmarshalJSON([]byte(`"NaN"`)) }},
		{"infinite longitude", func(r *models.RawRecord) { _ = r.Longitude.UnmarshalJSON([]byte(`"+Inf"`)) }},
		{"everything null", func(r *models.RawRecord) { *r = models.RawRecord{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRaw()
			tt.mutate(r)

			got, ok := NormalizeRecord(r)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}

	got, ok := NormalizeRecord(nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestNormalizeRecordStatusDefault(t *testing.T) {
	tests := []struct {
		name   string
		status *string
		want   models.Status
	}{
		{"absent", nil, models.StatusUnconfirmed},
		{"empty", str(""), models.StatusUnconfirmed},
		{"reported", str("영업"), "영업"},
		{"closed", str("폐업"), "폐업"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRaw()
			r.BusinessStatus = tt.status

			got, ok := NormalizeRecord(r)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestNameAddressKey(t *testing.T) {
	tests := []struct {
		name                 string
		bizName, addr, bType *string
		want                 string
	}{
		{"plain spaces", str("김밥 천국"), str("경기도 성남시 중원구 1"), str("분식"), "김밥천국경기도성남시중원구1분식"},
		{"tabs and newlines", str("A\tB"), str("C\nD\r\n"), str(" E "), "ABCDE"},
		{"ideographic and no-break space", str("가\u3000나"), str("다\u00a0라"), str("마"), "가나다라마"},
		{"byte order mark", str("\uFEFF가"), str("나"), str("다"), "가나다"},
		{"next line is kept", str("가\u0085"), str("나"), str("다"), "가\u0085나다"},
		{"null parts", nil, str("주소"), nil, "null주소null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameAddressKey(tt.bizName, tt.addr, tt.bType))
		})
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	n := NewNormalizer(utils.NewNopLogger())

	a := validRaw()
	b := validRaw()
	b.RoadAddress = nil
	c := validRaw()
	c.BusinessName = str("라멘 집")

	got := n.NormalizeAll("jpnfood", []*models.RawRecord{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, "스시 하루", got[0].Name)
	assert.Equal(t, "라멘 집", got[1].Name)
}
