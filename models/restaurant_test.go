package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		{name: "quoted number", input: `"37.2747"`, wantValid: true, want: 37.2747},
		{name: "bare number", input: `127.0286`, wantValid: true, want: 127.0286},
		{name: "null", input: `null`, wantValid: false},
		{name: "empty string", input: `""`, wantValid: false},
		{name: "blank string", input: `"  "`, wantValid: false},
		{name: "garbage", input: `"n/a"`, wantValid: false},
		{name: "nan", input: `"NaN"`, wantValid: false},
		{name: "infinity", input: `"Inf"`, wantValid: false},
		{name: "negative infinity", input: `"-Infinity"`, wantValid: false},
		{name: "overflow", input: `"1e400"`, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decimal
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.wantValid, d.Valid)
			if tt.wantValid {
				assert.InDelta(t, tt.want, d.Value, 1e-9)
			}
		})
	}
}

func TestRawRecordDecodesProviderRow(t *testing.T) {
	row := `{
		"SIGUN_NM": "수원시",
		"BIZPLC_NM": "스시 하루",
		"BSN_STATE_NM": "영업",
		"SANITTN_BIZCOND_NM": "일식",
		"REFINE_ROADNM_ADDR": "경기도 수원시 팔달구 정조로 1",
		"REFINE_LOTNO_ADDR": null,
		"REFINE_WGS84_LAT": "37.2747",
		"REFINE_WGS84_LOGT": 127.0286,
		"LOCPLC_AR": 45.2,
		"TOT_EMPLY_CNT": "3",
		"YY": null
	}`

	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(row), &rec))

	assert.Equal(t, "수원시", StringValue(rec.CountyName))
	assert.Equal(t, "스시 하루", StringValue(rec.BusinessName))
	assert.Nil(t, rec.LotAddress)
	assert.True(t, rec.Latitude.Valid)
	assert.True(t, rec.Longitude.Valid)
	assert.InDelta(t, 127.0286, rec.Longitude.Value, 1e-9)
	assert.Equal(t, "45.2", rec.SiteArea.String())
	assert.Equal(t, 3.0, rec.TotalEmployees.Value)
	assert.False(t, rec.Year.Valid)
}

func TestSyncReportErrJoinsFailures(t *testing.T) {
	errA := errors.New("jpnfood down")
	report := &SyncReport{Results: []DatasetResult{
		{Dataset: "jpnfood", Phase: PhaseFailed, Err: errA},
		{Dataset: "chifood", Phase: PhaseSuccess, Upserted: 10},
		{Dataset: "lunch", Phase: PhaseSuccess, Upserted: 5},
	}}

	assert.False(t, report.Succeeded())
	assert.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Err(), errA)
	assert.Equal(t, 15, report.TotalUpserted())

	ok := &SyncReport{Results: []DatasetResult{{Dataset: "lunch", Phase: PhaseSuccess}}}
	assert.True(t, ok.Succeeded())
	assert.NoError(t, ok.Err())
}
