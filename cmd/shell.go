package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-clutch-metrics/internal/report"
	"github.com/pable/go-clutch-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("clutchmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("clutch")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			err = shellList(db)
		case "show":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: show <game-id> [player]")
				continue
			}
			gameID, focus, _ := strings.Cut(rest, " ")
			var found bool
			found, err = printStoredGame(os.Stdout, db, gameID, strings.TrimSpace(focus))
			if err == nil && !found {
				cWarn.Fprintf(os.Stderr, "no game stored with id %q\n", gameID)
			}
		case "events":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: events <game-id>")
				continue
			}
			err = shellEvents(db, rest)
		case "trend":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: trend <player>")
				continue
			}
			err = shellTrend(db, rest)
		case "lineups":
			err = shellLineups(db, strings.Fields(rest))
		case "assists":
			err = shellAssists(db, rest)
		case "sql":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			err = printQuery(db, rest)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored games"},
		{"show <game-id> [player]", "a game's clutch tables, optionally highlighting a player"},
		{"events <game-id>", "every event inside the clutch windows"},
		{"trend <player>", "per-game clutch line for a player"},
		{"lineups [team] [min-seconds]", "season lineup leaderboard"},
		{"assists [team]", "season assist pairs"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-32s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) error {
	games, err := db.ListGames()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		cMuted.Println("No games stored yet.")
		return nil
	}
	report.PrintGameList(os.Stdout, games)
	return nil
}

func shellEvents(db *storage.DB, gameID string) error {
	events, err := db.GetClutchEvents(gameID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		cMuted.Println("No clutch events.")
		return nil
	}
	report.PrintEventTable(os.Stdout, events)
	return nil
}

func shellTrend(db *storage.DB, player string) error {
	rows, err := db.PlayerTrend(player)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		cMuted.Printf("No clutch games for %q.\n", player)
		return nil
	}
	report.PrintTrendTable(os.Stdout, rows)
	return nil
}

// shellLineups accepts an optional team followed by an optional minimum of
// seconds; a lone number is read as the minimum.
func shellLineups(db *storage.DB, args []string) error {
	team, minSeconds := "", 60.0
	if n := len(args); n > 0 {
		if v, err := strconv.ParseFloat(args[n-1], 64); err == nil {
			minSeconds = v
			args = args[:n-1]
		}
		team = strings.Join(args, " ")
	}
	board, err := db.LineupLeaderboard(team, minSeconds)
	if err != nil {
		return err
	}
	if len(board) == 0 {
		cMuted.Println("No lineups match.")
		return nil
	}
	report.PrintLeaderboard(os.Stdout, board)
	return nil
}

func shellAssists(db *storage.DB, team string) error {
	pairs, err := db.SeasonAssistPairs(team)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		cMuted.Println("No assist pairs.")
		return nil
	}
	report.PrintAssistTable(os.Stdout, pairs)
	return nil
}
