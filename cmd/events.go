package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var eventsCmd = &cobra.Command{
	Use:   "events <game-id>",
	Short: "List every event inside the game's clutch windows",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	events, err := db.GetClutchEvents(args[0])
	if err != nil {
		return fmt.Errorf("get clutch events: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintf(os.Stdout, "No clutch events stored for game %s.\n", args[0])
		return nil
	}
	report.PrintEventTable(os.Stdout, events)
	fmt.Fprintf(os.Stdout, "\n(%d events)\n", len(events))
	return nil
}
