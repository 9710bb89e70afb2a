package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pydash/internal/config"
	"pydash/internal/git"
	"pydash/internal/runner"
	"pydash/internal/scanner"
	"pydash/internal/server"
	"pydash/internal/store"
	"pydash/internal/watcher"
)

var (
	serveHost    string
	servePort    int
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Serve starts the local web dashboard: a single-page UI backed by the
JSON API, a websocket event stream, and Prometheus metrics. A background
watcher rescans the projects directory and pushes change alerts to connected
clients; disable it with --no-watch.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Disable the background change watcher")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	gitSvc := newGitService(cfg)
	if gitSvc.GitHubToken == "" {
		// No token configured: search project .env files for a working set.
		if creds := git.FindFallbackCredentials(ctx, nil, gitSvc.APIBase, cfg.ProjectsDir); creds != nil {
			gitSvc.GitHubToken = creds.Token
			gitSvc.GitHubUser = creds.Username
			if gitSvc.UserName == "" {
				gitSvc.UserName = creds.GitName
			}
			if gitSvc.UserEmail == "" {
				gitSvc.UserEmail = creds.GitEmail
			}
		}
	}

	srv := server.New(cfg, newScanner(cfg), gitSvc, runner.Exec{}, db)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if !serveNoWatch {
		// The watcher gets its own scanner so web requests and background
		// rescans never share mutable state.
		wsc := newScanner(cfg)
		scan := func(ctx context.Context) []scanner.Project {
			return wsc.Scan(ctx, cfg.ProjectsDir)
		}
		w := watcher.New(cfg.ProjectsDir, watchIntervalOrDefault(cfg), scan, func(a watcher.Alert) {
			srv.Broadcast(server.Event{
				Type:    "alert",
				Level:   a.Level,
				Title:   a.Title,
				Message: a.Message,
				Time:    a.Time,
			})
		})
		g.Go(func() error {
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	fmt.Printf("pydash %s serving http://%s:%d (ctrl-c to stop)\n",
		appVersion, cfg.Server.Host, cfg.Server.Port)

	err = g.Wait()
	if err == nil || err == context.Canceled {
		fmt.Println("\nStopped.")
		return nil
	}
	return err
}

// A zero or negative watch interval would make the ticker panic, so fall
// back to the default.
func watchIntervalOrDefault(cfg *config.Config) time.Duration {
	if cfg.Watch.IntervalSec <= 0 {
		return config.DefaultWatchInterval * time.Second
	}
	return cfg.Watch.Interval()
}
