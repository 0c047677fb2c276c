package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/timeclock/internal/attendance"
	"git.home.luguber.info/inful/timeclock/internal/config"
	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/notify"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write an example configuration file"`

	Migrate struct{} `cmd:"" help:"Create or update the database schema"`

	CheckIn struct {
		User int64  `short:"u" required:"" help:"User id"`
		Pin  string `short:"p" required:"" help:"Attendance PIN"`
	} `cmd:"" name:"check-in" help:"Check a user in"`

	CheckOut struct {
		User int64 `short:"u" required:"" help:"User id"`
	} `cmd:"" name:"check-out" help:"Check a user out and record working hours"`

	Status struct {
		User int64 `short:"u" required:"" help:"User id"`
	} `cmd:"" help:"Show whether a user is currently checked in"`

	Today struct {
		User int64 `short:"u" required:"" help:"User id"`
	} `cmd:"" help:"List today's records for a user"`

	History struct {
		User   int64 `short:"u" required:"" help:"User id"`
		Limit  int   `help:"Records per page" default:"30"`
		Offset int   `help:"Records to skip"`
	} `cmd:"" help:"List a user's attendance history"`

	Daemon struct{} `cmd:"" help:"Run with metrics endpoint and periodic store maintenance"`
}

// logLevel is shared with daemon mode so config reloads can adjust it.
var logLevel = new(slog.LevelVar)

func main() {
	ctx := kong.Parse(&CLI)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	if CLI.Verbose {
		logLevel.Set(slog.LevelDebug)
	}

	if ctx.Command() == "init" {
		if err := config.WriteExample(CLI.Config, CLI.Init.Force); err != nil {
			fail("Init failed", err)
		}
		fmt.Printf("Wrote %s\n", CLI.Config)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fail("Failed to load configuration", err)
	}
	if !CLI.Verbose {
		logLevel.Set(parseLevel(cfg.Logging.Level))
	}

	mgr := store.NewManager(cfg.Database, cfg.Policy())

	switch ctx.Command() {
	case "migrate":
		if err := mgr.Migrate(context.Background()); err != nil {
			fail("Migration failed", err)
		}
		fmt.Println("Schema is up to date")
	case "check-in":
		runCheckIn(cfg, mgr)
	case "check-out":
		runCheckOut(cfg, mgr)
	case "status":
		runStatus(mgr)
	case "today":
		runToday(mgr)
	case "history":
		runHistory(mgr)
	case "daemon":
		if err := runDaemon(cfg); err != nil {
			fail("Daemon failed", err)
		}
	default:
		fail("Unknown command", fmt.Errorf("%s", ctx.Command()))
	}
}

// newTracker assembles the state machine for a one-shot CLI invocation.
// Event publishing is attached when configured; a publish failure never
// fails the attendance operation itself.
func newTracker(cfg *config.Config, mgr *store.Manager) (*attendance.Tracker, func()) {
	var opts []attendance.TrackerOption
	cleanup := func() {}
	if cfg.Events.Enabled {
		p, err := notify.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Event publishing unavailable", "error", err)
		} else {
			opts = append(opts, attendance.WithPublisher(p))
			cleanup = p.Close
		}
	}
	return attendance.NewTracker(mgr, attendance.NewStorePinVerifier(mgr), opts...), cleanup
}

func runCheckIn(cfg *config.Config, mgr *store.Manager) {
	tracker, cleanup := newTracker(cfg, mgr)
	defer cleanup()
	sess := attendance.Session{UserID: CLI.CheckIn.User, Authenticated: true}
	id, err := tracker.CheckIn(context.Background(), sess, CLI.CheckIn.Pin)
	if err != nil {
		fail("Check-in failed", err)
	}
	fmt.Printf("Checked in (record %d)\n", id)
}

func runCheckOut(cfg *config.Config, mgr *store.Manager) {
	tracker, cleanup := newTracker(cfg, mgr)
	defer cleanup()
	sess := attendance.Session{UserID: CLI.CheckOut.User, Authenticated: true}
	result, err := tracker.CheckOut(context.Background(), sess)
	if err != nil {
		fail("Check-out failed", err)
	}
	fmt.Printf("Checked out (record %d, %.2f hours)\n", result.RecordID, result.WorkingHours)
}

// readTracker builds a tracker for read-only lookups; no publisher needed.
func readTracker(mgr *store.Manager) *attendance.Tracker {
	return attendance.NewTracker(mgr, attendance.NewStorePinVerifier(mgr))
}

func runStatus(mgr *store.Manager) {
	sess := attendance.Session{UserID: CLI.Status.User, Authenticated: true}
	open, err := readTracker(mgr).GetUnclosedRecord(context.Background(), sess)
	if err != nil {
		fail("Status lookup failed", err)
	}
	if open == nil {
		fmt.Println("Checked out")
		return
	}
	fmt.Printf("Checked in since %s %s (record %d)\n", open.CalendarDate, open.CheckInTime, open.ID)
}

func runToday(mgr *store.Manager) {
	sess := attendance.Session{UserID: CLI.Today.User, Authenticated: true}
	records, err := readTracker(mgr).Today(context.Background(), sess)
	if err != nil {
		fail("Today lookup failed", err)
	}
	printRecords(records)
}

func runHistory(mgr *store.Manager) {
	sess := attendance.Session{UserID: CLI.History.User, Authenticated: true}
	records, err := readTracker(mgr).History(context.Background(), sess, CLI.History.Limit, CLI.History.Offset)
	if err != nil {
		fail("History lookup failed", err)
	}
	printRecords(records)
}

func printRecords(records []attendance.Record) {
	if len(records) == 0 {
		fmt.Println("No records")
		return
	}
	for _, r := range records {
		out := "-"
		if r.CheckOutTime != "" {
			out = r.CheckOutTime
		}
		hours := "-"
		if r.WorkingHours != nil {
			hours = fmt.Sprintf("%.2f", *r.WorkingHours)
		}
		fmt.Printf("%6d  %s  %s  %-8s  %6s  %s\n",
			r.ID, r.CalendarDate, r.CheckInTime, out, hours, r.Status)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	if errors.IsRetryable(err) {
		slog.Info("The operation may succeed if retried")
	}
	os.Exit(1)
}
