package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"meeting-portal-backend/internal/app"
	calendardomain "meeting-portal-backend/internal/calendar/domain"
	"meeting-portal-backend/pkg/config"
	"meeting-portal-backend/pkg/logging"

	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logCloser := logging.Setup(cfg)
	defer logCloser.Close()

	cliApp := &cli.App{
		Name:  "portalctl",
		Usage: "Maintenance commands for the meetings portal backend.",
		Commands: []*cli.Command{
			migrateCommand(cfg),
			syncCommand(cfg),
			connectionsCommand(cfg),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Printf("portalctl failed: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// withApp wires the application for one command and tears it down afterwards
func withApp(cfg *config.Config, fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := app.New(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		runErr := fn(c, a)
		if err := a.Close(); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update database tables.",
		Action: withApp(cfg, func(c *cli.Context, a *app.App) error {
			if err := app.Migrate(a.DB); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Println("[portalctl] Migration complete")
			return nil
		}),
	}
}

func syncCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Import upcoming Outlook events for one user, or every connected user with --all.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "Portal user ID to sync."},
			&cli.BoolFlag{Name: "manual", Usage: "Bypass the automatic-sync throttle."},
			&cli.BoolFlag{Name: "all", Usage: "Run one scheduler pass over every connected user."},
		},
		Action: withApp(cfg, func(c *cli.Context, a *app.App) error {
			a.StartNotifications(c.Context)

			if c.Bool("all") {
				stats, err := a.NewScheduler(nil).RunOnce(c.Context)
				if err != nil {
					return fmt.Errorf("sync pass failed: %w", err)
				}
				fmt.Fprintf(c.App.Writer, "users=%d ok=%d throttled=%d failed=%d imported=%d\n",
					stats.Users, stats.Succeeded, stats.Throttled, stats.Failed, stats.Synced)
				return nil
			}

			userID := c.String("user")
			if userID == "" {
				return fmt.Errorf("--user or --all is required")
			}

			trigger := calendardomain.TriggerAutomatic
			if c.Bool("manual") {
				trigger = calendardomain.TriggerManual
			}

			summary, err := a.SyncUsecase.Sync(c.Context, userID, trigger)
			if err != nil {
				return fmt.Errorf("sync for user %s failed: %w", userID, err)
			}
			fmt.Fprintf(c.App.Writer, "synced=%d skipped=%d total=%d\n", summary.SyncedCount, summary.SkippedCount, summary.TotalFound)
			return nil
		}),
	}
}

func connectionsCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "connections",
		Usage: "List users with a connected Outlook calendar and their token expiry.",
		Action: withApp(cfg, func(c *cli.Context, a *app.App) error {
			records, err := a.TokenStore.ListConnected()
			if err != nil {
				return fmt.Errorf("failed to list connections: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tEXPIRES AT\tSTATE")
			now := time.Now()
			for _, r := range records {
				state := "valid"
				if r.Expired(now) {
					state = "expired"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.UserID, r.ExpiresAt.Format(time.RFC3339), state)
			}
			return w.Flush()
		}),
	}
}
