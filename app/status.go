package app

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"restaurant-sync/models"
	"restaurant-sync/storage"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last sync outcome of every configured data-set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := storage.OpenStatusStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			statuses := make([]*models.SyncStatus, 0, len(cfg.Datasets))
			for _, dataset := range cfg.Datasets {
				status, err := store.LoadStatus(cmd.Context(), dataset)
				if err != nil {
					return err
				}
				if status == nil {
					status = &models.SyncStatus{Dataset: dataset}
				}
				statuses = append(statuses, status)
			}

			printStatuses(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
}

func printStatuses(w io.Writer, statuses []*models.SyncStatus) {
	fmt.Fprintf(w, "%-10s %-8s %-20s %-20s %8s  %s\n", "DATASET", "PHASE", "LAST ATTEMPT", "LAST SUCCESS", "ROWS", "MESSAGE")
	for _, s := range statuses {
		phase := string(s.Phase)
		if phase == "" {
			phase = "never"
		}
		fmt.Fprintf(w, "%-10s %-8s %-20s %-20s %8d  %s\n",
			s.Dataset, phase, formatTime(&s.LastAttempt), formatTime(s.LastSuccess), s.RecordCount,
			runewidth.Truncate(s.Message, 60, "..."))
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
