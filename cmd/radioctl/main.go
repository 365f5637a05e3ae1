package main

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lysyi3m/radio-site/app/auth"
	"github.com/lysyi3m/radio-site/app/content"
	"github.com/lysyi3m/radio-site/app/invites"
	"github.com/lysyi3m/radio-site/app/schedule"
	"github.com/lysyi3m/radio-site/app/seed"
	"github.com/lysyi3m/radio-site/app/store"
	"github.com/lysyi3m/radio-site/app/store/backend"
)

// App holds what every command works against
type App struct {
	ctx   context.Context
	store store.Store
	repos *content.Repositories
}

var (
	storeOpts backend.Options
	debug     bool
	app       *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radioctl",
		Short: "radioctl - administer a radio-site installation",
		Long:  `Maintenance commands that work directly against the site's document store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.store != nil {
				app.store.Close()
			}
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&storeOpts.Backend, "store", cmp.Or(os.Getenv("STORE_BACKEND"), backend.SQLite), "Document store backend (sqlite, firestore)")
	flags.StringVar(&storeOpts.SQLitePath, "sqlite-path", cmp.Or(os.Getenv("SQLITE_PATH"), "./data/radio.db"), "Path of the sqlite database file")
	flags.StringVar(&storeOpts.FirestoreProject, "firestore-project", os.Getenv("FIRESTORE_PROJECT"), "Google Cloud project of the Firestore database")
	flags.StringVar(&storeOpts.FirestoreCredentials, "firestore-credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Service account credentials file")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(inviteCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logging and opens the document store
func initApp() error {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app = &App{ctx: context.Background()}

	st, err := backend.Open(app.ctx, storeOpts)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	app.store = st
	app.repos = content.NewRepositories(st, nil)
	return nil
}

// Command definitions

func createAdminCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Create an admin account without an invitation code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Print("Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			svc := auth.NewService(app.store, invites.NewService(app.repos.InvitationCodes), nil, nil)
			user, err := svc.CreateUser(app.ctx, args[0], password)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Admin created: %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "Password of the new admin (prompted when empty)")
	return cmd
}

func inviteCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Generate invitation codes for new admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := invites.NewService(app.repos.InvitationCodes).Generate(app.ctx, count)
			if err != nil {
				return err
			}

			fmt.Printf("\nGenerated %d invitation codes:\n\n", len(codes))
			for _, c := range codes {
				fmt.Printf("  %s\n", c.Code)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of codes to generate")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty site with demo content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeder := seed.NewSeeder(app.repos, schedule.NewEditor(app.store, nil))
			summary, err := seeder.Run(app.ctx)
			if err != nil {
				return err
			}

			collections := make([]string, 0, len(summary))
			for c := range summary {
				collections = append(collections, c)
			}
			sort.Strings(collections)

			fmt.Printf("\n✓ Demo content seeded:\n\n")
			for _, c := range collections {
				fmt.Printf("  %-16s %d\n", c, summary[c])
			}
			fmt.Println()
			return nil
		},
	}
}
