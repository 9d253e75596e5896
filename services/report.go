package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"restaurant-sync/models"
	"restaurant-sync/utils"
)

const topCountyLimit = 5

type ReportService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewReportService(logger *utils.Logger, out io.Writer) *ReportService {
	return &ReportService{logger: logger, out: out}
}

// CountByCounty counts restaurants per county name. Empty names are grouped under "".
func CountByCounty(restaurants []*models.Restaurant) map[string]int {
	counts := make(map[string]int)
	for _, r := range restaurants {
		counts[r.CountyName]++
	}
	return counts
}

func (s *ReportService) Generate(r *models.SyncReport) *models.RunSummary {
	summary := &models.RunSummary{
		RunID:    r.RunID,
		Duration: r.FinishedAt.Sub(r.StartedAt),
		Datasets: len(r.Results),
	}

	byCounty := make(map[string]int)
	for _, res := range r.Results {
		if res.Phase != models.PhaseSuccess {
			summary.FailedDatasets++
		}
		summary.TotalFetched += res.Fetched
		summary.TotalDropped += res.Dropped
		summary.TotalDuplicates += res.Duplicates
		summary.TotalUpserted += res.Upserted
		for county, n := range res.ByCounty {
			if county != "" {
				byCounty[county] += n
			}
		}
	}

	counties := make([]models.CountyCount, 0, len(byCounty))
	for county, n := range byCounty {
		counties = append(counties, models.CountyCount{County: county, Count: n})
	}
	sort.Slice(counties, func(i, j int) bool {
		if counties[i].Count != counties[j].Count {
			return counties[i].Count > counties[j].Count
		}
		return counties[i].County < counties[j].County
	})
	if len(counties) > topCountyLimit {
		counties = counties[:topCountyLimit]
	}
	summary.TopCounties = counties

	return summary
}

func (s *ReportService) Print(r *models.SyncReport, summary *models.RunSummary) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  RESTAURANT SYNC REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run id          : %s\n", summary.RunID)
	fmt.Fprintf(w, "  Duration        : %s\n", summary.Duration.Round(10*time.Millisecond))
	fmt.Fprintf(w, "  Data-sets       : \033[1m%d\033[0m (%d failed)\n", summary.Datasets, summary.FailedDatasets)
	fmt.Fprintf(w, "  Rows upserted   : \033[1;32m%d\033[0m\n", summary.TotalUpserted)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Data-sets\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %-10s %-8s %8s %8s %8s %8s\n", "name", "result", "fetched", "dropped", "dupes", "upserted")
	for _, res := range r.Results {
		result := "\033[1;32mok\033[0m      "
		if res.Phase != models.PhaseSuccess {
			result = "\033[1;31mfailed\033[0m  "
		}
		fmt.Fprintf(w, "  %-10s %s %8d %8d %8d %8d\n",
			truncate(res.Dataset, 10), result, res.Fetched, res.Dropped, res.Duplicates, res.Upserted)
		if res.Err != nil {
			fmt.Fprintf(w, "    \033[31m%s\033[0m\n", truncate(res.Err.Error(), 56))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d Counties\033[0m\n", topCountyLimit)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(summary.TopCounties) == 0 {
		fmt.Fprintf(w, "  No county data\n")
	} else {
		for i, cc := range summary.TopCounties {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %s %d\n", i+1, pad(truncate(cc.County, 20), 22), cc.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to max terminal cells, counting Hangul as two cells.
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "...")
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
