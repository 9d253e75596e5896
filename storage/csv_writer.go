package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"restaurant-sync/models"
)

var rawHeader = []string{
	"SIGUN_NM", "SIGUN_CD", "BIZPLC_NM", "LICENSG_DE", "BSN_STATE_NM", "CLSBIZ_DE",
	"LOCPLC_AR", "GRAD_FACLT_DIV_NM", "MALE_ENFLPSN_CNT", "YY", "MULTI_USE_BIZESTBL_YN",
	"GRAD_DIV_NM", "TOT_FACLT_SCALE", "FEMALE_ENFLPSN_CNT", "BSNSITE_CIRCUMFR_DIV_NM",
	"SANITTN_INDUTYPE_NM", "SANITTN_BIZCOND_NM", "TOT_EMPLY_CNT",
	"REFINE_LOTNO_ADDR", "REFINE_ROADNM_ADDR", "REFINE_ZIP_CD",
	"REFINE_WGS84_LOGT", "REFINE_WGS84_LAT",
}

// CSVWriter writes raw provider rows to a CSV file, one row per record.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(rawHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends records as they came from the provider. Null fields are
// written as empty cells.
func (c *CSVWriter) WriteRaw(records []*models.RawRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if r == nil {
			continue
		}
		row := []string{
			models.StringValue(r.CountyName),
			models.StringValue(r.CountyCode),
			models.StringValue(r.BusinessName),
			models.StringValue(r.LicenseDate),
			models.StringValue(r.BusinessStatus),
			models.StringValue(r.ClosedDate),
			r.SiteArea.String(),
			models.StringValue(r.GradeFacilityType),
			r.MaleEmployees.String(),
			r.Year.String(),
			models.StringValue(r.MultiUseBusiness),
			models.StringValue(r.GradeType),
			r.TotalFacilityScale.String(),
			r.FemaleEmployees.String(),
			models.StringValue(r.SurroundingsType),
			models.StringValue(r.IndustryType),
			models.StringValue(r.BusinessCondition),
			r.TotalEmployees.String(),
			models.StringValue(r.LotAddress),
			models.StringValue(r.RoadAddress),
			models.StringValue(r.ZipCode),
			r.Longitude.String(),
			r.Latitude.String(),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// CSVDumper writes one "<dataset>_raw.csv" file per data-set under Dir.
type CSVDumper struct {
	Dir string
}

// Path returns the file a dump of dataset is written to.
func (d CSVDumper) Path(dataset string) string {
	return filepath.Join(d.Dir, dataset+"_raw.csv")
}

// Dump replaces the data-set's CSV file with records.
func (d CSVDumper) Dump(dataset string, records []*models.RawRecord) error {
	w, err := NewCSVWriter(d.Path(dataset))
	if err != nil {
		return err
	}
	if err := w.WriteRaw(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
