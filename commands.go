package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bensuskins/chore-helper/internal/config"
	"github.com/bensuskins/chore-helper/internal/database"
	"github.com/bensuskins/chore-helper/internal/handlers"
	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/server"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/bensuskins/chore-helper/internal/terminal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type cli struct {
	envFile string
	config  config.Config
}

func newRootCommand() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:          "chore-helper",
		Short:        "Chore recurrence configuration service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.envFile)
			if err != nil {
				return err
			}
			config.SetupLogging(cfg)
			app.config = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "optional env file read before the environment")

	root.AddCommand(
		app.serveCommand(),
		app.validateCommand(),
		app.wizardCommand(),
		app.tokenCommand(),
		app.historyCommand(),
		app.migrateCommand(),
	)
	return root
}

func (app *cli) openDatabase(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(app.config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func (app *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if app.config.APIToken != "" {
				if err := ensureToken(cmd.Context(), repository.NewAPITokenRepository(db), "bootstrap", app.config.APIToken); err != nil {
					return err
				}
			}

			return server.New(db, app.config).Start()
		},
	}
}

// ensureToken stores rawToken unless a token with the same hash exists.
func ensureToken(ctx context.Context, tokenRepo repository.APITokenRepository, name, rawToken string) error {
	tokenHash := repository.HashToken(rawToken)
	_, err := tokenRepo.FindByTokenHash(ctx, tokenHash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("finding bootstrap token: %w", err)
	}

	if _, err := tokenRepo.Create(ctx, models.APIToken{Name: name, TokenHash: tokenHash}); err != nil {
		return fmt.Errorf("creating bootstrap token: %w", err)
	}
	slog.Info("created bootstrap api token", "name", name)
	return nil
}

type validationResult struct {
	Name    string         `json:"name" yaml:"name"`
	Valid   bool           `json:"valid" yaml:"valid"`
	Field   string         `json:"field,omitempty" yaml:"field,omitempty"`
	Key     string         `json:"key,omitempty" yaml:"key,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

func (app *cli) validateCommand() *cobra.Command {
	var format string
	var save bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Resolve chore drafts from a YAML or JSON file",
		Long: `Resolve every chore draft in a YAML or JSON file (or stdin) and report the
resolved options or the rejected field of each. With --save the chores are
stored when all of them resolve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening drafts: %w", err)
				}
				defer file.Close()
				reader = file
			}

			drafts, err := services.LoadDrafts(reader)
			if err != nil {
				return err
			}

			results := make([]validationResult, len(drafts))
			rejected := 0
			for i, draft := range drafts {
				results[i] = resolveDraft(i, draft)
				if !results[i].Valid {
					rejected++
				}
			}

			if err := writeResults(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d chores rejected", rejected, len(drafts))
			}
			if save {
				return app.saveDrafts(cmd.Context(), drafts)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&save, "save", false, "store the chores when every draft resolves")
	return cmd
}

func resolveDraft(index int, draft services.Draft) validationResult {
	result := validationResult{Name: draft.String(models.KeyName)}
	if result.Name == "" {
		result.Name = fmt.Sprintf("#%d", index+1)
	}

	resolved, err := services.Resolve(draft)
	if err != nil {
		result.Error = err.Error()
		if configErr, ok := services.AsConfigError(err); ok {
			result.Field = configErr.Field
			result.Key = configErr.Key
			result.Error = configErr.Reason.Error()
		}
		return result
	}
	result.Valid = true
	result.Options = resolved.Options()
	return result
}

func writeResults(output io.Writer, format string, results []validationResult) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "yaml":
		return yaml.NewEncoder(output).Encode(results)
	case "text":
		for _, result := range results {
			if result.Valid {
				fmt.Fprintf(output, "ok       %s (%v every %v)\n", result.Name, result.Options[models.KeyFrequency], result.Options[models.KeyPeriod])
				continue
			}
			if result.Field != "" {
				fmt.Fprintf(output, "invalid  %s: %s: %s (%s)\n", result.Name, result.Field, result.Error, result.Key)
				continue
			}
			fmt.Fprintf(output, "invalid  %s: %s\n", result.Name, result.Error)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func (app *cli) saveDrafts(ctx context.Context, drafts []services.Draft) error {
	db, err := app.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	choreService := services.NewChoreService(repository.NewChoreRepository(db), repository.NewChoreAssignmentRepository(db))
	for _, draft := range drafts {
		if _, err := choreService.Create(ctx, draft); err != nil {
			return err
		}
	}
	return nil
}

func (app *cli) wizardCommand() *cobra.Command {
	var accessible bool
	var save bool

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Configure a chore step by step in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter := terminal.HuhPrompter{
				Input:      cmd.InOrStdin(),
				Output:     cmd.ErrOrStderr(),
				Accessible: accessible,
			}
			draft, resolved, err := terminal.Run(cmd.Context(), prompter, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := yaml.NewEncoder(cmd.OutOrStdout()).Encode(resolved.Options()); err != nil {
				return fmt.Errorf("writing options: %w", err)
			}
			if save {
				return app.saveDrafts(cmd.Context(), []services.Draft{draft})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", false, "plain line-based prompts for screen readers")
	cmd.Flags().BoolVar(&save, "save", false, "store the chore")
	return cmd
}

func (app *cli) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}

	var name string
	var expiresIn time.Duration
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an API token and print it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			rawToken := handlers.GenerateToken()
			token := models.APIToken{Name: name, TokenHash: repository.HashToken(rawToken)}
			if expiresIn > 0 {
				expiresAt := time.Now().Add(expiresIn)
				token.ExpiresAt = &expiresAt
			}
			if _, err := repository.NewAPITokenRepository(db).Create(cmd.Context(), token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), rawToken)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "token name")
	create.Flags().DurationVar(&expiresIn, "expires-in", 0, "token lifetime, no expiry when zero")
	create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

func (app *cli) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune the assignment history",
	}

	var person string
	var since time.Duration
	count := &cobra.Command{
		Use:   "count",
		Short: "Count the chores a person completed recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			completed, err := repository.NewChoreAssignmentRepository(db).CompletedCountByPerson(cmd.Context(), person, time.Now().Add(-since))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), completed)
			return nil
		},
	}
	count.Flags().StringVar(&person, "person", "", "person entity id")
	count.Flags().DurationVar(&since, "since", 7*24*time.Hour, "how far back to count")
	count.MarkFlagRequired("person")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete completed assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.NewChoreAssignmentRepository(db).DeleteCompleted(cmd.Context()); err != nil {
				return err
			}
			slog.Info("pruned completed assignments")
			return nil
		},
	}

	cmd.AddCommand(count, prune)
	return cmd
}

func (app *cli) migrateCommand() *cobra.Command {
	var downTo int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or revert with --down-to",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(app.config.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			if cmd.Flags().Changed("down-to") {
				err = database.Rollback(ctx, db, downTo)
			} else {
				err = database.Migrate(ctx, db)
			}
			if err != nil {
				return err
			}

			version, err := database.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}

	cmd.Flags().IntVar(&downTo, "down-to", 0, "revert migrations newer than this version")
	return cmd
}
