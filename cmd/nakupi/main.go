package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/erazemk/nakupi/internal/api"
	"github.com/erazemk/nakupi/internal/config"
	"github.com/erazemk/nakupi/internal/db"
	"github.com/erazemk/nakupi/internal/inventory"
	"github.com/erazemk/nakupi/internal/notify"
	"github.com/erazemk/nakupi/internal/store"
)

// levelRouter is a slog.Handler that routes WARN to stdout and ERROR+ to
// stderr. INFO and below stay quiet so log lines don't interleave with
// command output.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. WARN goes to stdout, ERROR goes
// to stderr. If logPath is non-empty, both are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	// Optional .env next to the binary; missing file is fine.
	godotenv.Load()
	cfg := config.Load()

	fs := flag.NewFlagSet("nakupi", flag.ContinueOnError)

	var apiURL string
	fs.StringVar(&apiURL, "api", cfg.APIURL, "")
	fs.StringVar(&apiURL, "a", cfg.APIURL, "")

	var token string
	fs.StringVar(&token, "token", cfg.APIToken, "")
	fs.StringVar(&token, "t", cfg.APIToken, "")

	var cachePath string
	fs.StringVar(&cachePath, "cache", cfg.CachePath, "")
	fs.StringVar(&cachePath, "c", cfg.CachePath, "")

	var logPath string
	fs.StringVar(&logPath, "log", cfg.LogPath, "")
	fs.StringVar(&logPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: nakupi [flags] <command> [command flags]

Commands:
  list        list purchases (filter, sort, page)
  add         add a purchase
  rm <id>     delete a purchase
  retailers   list known retailers
  brands      list known brands

Flags:
  -a, -api <url>      backend base URL (default: $NAKUPI_API_URL or http://localhost:8000/api)
  -t, -token <jwt>    bearer token (default: $NAKUPI_API_TOKEN)
  -c, -cache <path>   local cache path, empty disables (default: nakupi.sqlite3)
  -l, -log <path>     log file path (default: no file, stdout/stderr only)
  -h, -help           show this help and exit

Run "nakupi <command> -h" for command flags.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	app, err := newApp(apiURL, token, cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	command, args := fs.Arg(0), fs.Args()[1:]
	if err := app.Run(context.Background(), command, args); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app wires the view-model, cache and preferences behind the CLI commands.
type app struct {
	client *api.Client
	inv    *inventory.Inventory
	prefs  store.Preferences
	cache  *sql.DB // nil when the cache is disabled or unusable
}

func newApp(apiURL, token, cachePath string) (*app, error) {
	client := api.NewClient(apiURL, token)

	prefs := store.DefaultPreferences()
	var cache *sql.DB

	// A missing or broken cache never blocks the CLI.
	if cachePath != "" {
		database, err := db.Open(cachePath)
		if err != nil {
			slog.Warn("opening cache, continuing without it", "path", cachePath, "error", err)
		} else if err := db.EnsureSchema(database); err != nil {
			slog.Warn("preparing cache, continuing without it", "path", cachePath, "error", err)
			database.Close()
		} else {
			cache = database
			if saved, err := store.LoadPreferences(context.Background(), database); err != nil {
				slog.Warn("loading preferences", "error", err)
			} else {
				prefs = saved
			}
		}
	}

	inv := inventory.New(client, printerNotifier{}, cache)
	inv.SetSort(inventory.Sort{Field: prefs.SortField, Direction: inventory.Direction(prefs.SortDirection)})

	return &app{client: client, inv: inv, prefs: prefs, cache: cache}, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func (a *app) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.runList(ctx, args)
	case "add":
		return a.runAdd(ctx, args)
	case "rm":
		return a.runRemove(ctx, args)
	case "retailers":
		return a.runRetailers(ctx)
	case "brands":
		return a.runBrands(ctx)
	default:
		return fmt.Errorf("unknown command %q, run \"nakupi -h\"", command)
	}
}

// printerNotifier prints user-facing notifications to the terminal, errors
// and warnings to stderr.
type printerNotifier struct{}

func (printerNotifier) Notify(level notify.Level, message string) {
	switch level {
	case notify.Error:
		fmt.Fprintln(os.Stderr, "error: "+message)
	case notify.Warning:
		fmt.Fprintln(os.Stderr, "warning: "+message)
	default:
		fmt.Println(message)
	}
}
