package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-sync/models"
)

func TestCSVDumperWritesHeaderAndRows(t *testing.T) {
	name, addr := "스시 하루", "경기도 수원시 팔달구 정조로 1"
	d := CSVDumper{Dir: filepath.Join(t.TempDir(), "raw")}

	err := d.Dump("jpnfood", []*models.RawRecord{
		{BusinessName: &name, RoadAddress: &addr, Latitude: models.NewDecimal(37.2747)},
		nil,
		{},
	})
	require.NoError(t, err)

	f, err := os.Open(d.Path("jpnfood"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rawHeader, rows[0])
	assert.Equal(t, "스시 하루", rows[1][2])
	assert.Equal(t, addr, rows[1][19])
	assert.Equal(t, "", rows[1][21])
	assert.Equal(t, "37.2747", rows[1][22])
	assert.Equal(t, make([]string, len(rawHeader)), rows[2])
}

func TestCSVDumperTruncatesPreviousDump(t *testing.T) {
	d := CSVDumper{Dir: t.TempDir()}
	require.NoError(t, d.Dump("lunch", make([]*models.RawRecord, 0)))
	require.NoError(t, d.Dump("lunch", []*models.RawRecord{{}, {}}))
	require.NoError(t, d.Dump("lunch", []*models.RawRecord{{}}))

	b, err := os.ReadFile(d.Path("lunch"))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
