package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	catalog "github.com/CodeAndHammer/foodle/internal/catalog"
	config "github.com/CodeAndHammer/foodle/internal/config"
	game "github.com/CodeAndHammer/foodle/internal/game"
	models "github.com/CodeAndHammer/foodle/internal/models"
	schedule "github.com/CodeAndHammer/foodle/internal/schedule"
	store "github.com/CodeAndHammer/foodle/internal/store"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Format string
	DBPath string
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "foodle",
		Short: "Foodle - the daily ingredient guessing game",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "player database path (overrides DB_PATH)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newTodayCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newDaysCommand(opts))

	return cmd
}

func (opts *rootOptions) config() config.Config {
	cfg := config.Load()
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	return cfg
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			util.LogInfo("Running in %s mode", cfg.Mode())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			app.startCleanupRoutines(ctx)
			return app.startServer(app.newRouter())
		},
	}
}

type todayReport struct {
	PuzzleKey     string `json:"puzzleKey"`
	RecipeID      string `json:"recipeId"`
	RecipeName    string `json:"recipeName"`
	Ingredients   int    `json:"ingredients"`
	NextPuzzleIn  string `json:"nextPuzzleIn"`
	RolloverHour  int    `json:"rolloverHour"`
	UTCOffsetMins int    `json:"utcOffsetMinutes"`
}

func newTodayCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the current puzzle day and the recipe bound to it",
		Long: `Show the current puzzle key and its recipe.

Binds a recipe to the day if none is bound yet, exactly as the first
request of the day would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			ctx := cmd.Context()

			db, err := openCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			resolver := schedule.NewResolver(cfg.RolloverHour, cfg.UTCOffsetMinutes, nil)
			key := resolver.Today()
			recipe, err := catalog.NewRotator(db).Recipe(ctx, key)
			if err != nil {
				return err
			}

			report := todayReport{
				PuzzleKey:     key,
				RecipeID:      recipe.ID,
				RecipeName:    recipe.Name,
				Ingredients:   len(recipe.Ingredients),
				NextPuzzleIn:  util.FormatCountdown(resolver.TimeRemaining(resolver.Now())),
				RolloverHour:  cfg.RolloverHour,
				UTCOffsetMins: cfg.UTCOffsetMinutes,
			}
			return output(cmd.OutOrStdout(), opts.Format, report, func(w io.Writer) {
				fmt.Fprintf(w, "Puzzle %s: %s (%s, %d ingredients)\n", report.PuzzleKey, report.RecipeName, report.RecipeID, report.Ingredients)
				fmt.Fprintf(w, "Next puzzle in %s\n", report.NextPuzzleIn)
			})
		},
	}
}

type seedReport struct {
	File    string `json:"file,omitempty"`
	Loaded  int    `json:"loaded"`
	Written int    `json:"written"`
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load recipes into the catalog",
		Long: `Load recipes from a YAML file into the catalog.

Without --file the built-in recipes are used. Recipes already bound to a
puzzle day are never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			ctx := cmd.Context()

			db, err := store.OpenSQLite(cfg.DBPath, limitsFor(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			recipes := catalog.DefaultRecipes()
			if file != "" {
				if recipes, err = catalog.LoadFile(file); err != nil {
					return err
				}
			}
			written, err := db.UpsertRecipes(ctx, recipes)
			if err != nil {
				return err
			}

			report := seedReport{File: file, Loaded: len(recipes), Written: written}
			return output(cmd.OutOrStdout(), opts.Format, report, func(w io.Writer) {
				fmt.Fprintf(w, "Loaded %d recipe%s, %d written\n", report.Loaded, util.Plural(report.Loaded), report.Written)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML recipe catalog")
	return cmd
}

func newDaysCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "List puzzle days and their recipes, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()

			db, err := store.OpenSQLite(cfg.DBPath, limitsFor(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			days, err := db.PuzzleDays(cmd.Context())
			if err != nil {
				return err
			}
			if days == nil {
				days = []models.PuzzleDay{}
			}
			return output(cmd.OutOrStdout(), opts.Format, days, func(w io.Writer) {
				if len(days) == 0 {
					fmt.Fprintln(w, "No puzzle days bound yet")
					return
				}
				for _, d := range days {
					fmt.Fprintf(w, "%s  %s\n", d.Key, d.RecipeID)
				}
			})
		},
	}
}

func limitsFor(cfg config.Config) game.Limits {
	return game.Limits{MaxAttempts: cfg.MaxAttempts, MaxHints: cfg.MaxHints}
}

// openCatalog opens the player database and makes sure it holds recipes.
func openCatalog(ctx context.Context, cfg config.Config) (*store.SQLiteStore, error) {
	db, err := store.OpenSQLite(cfg.DBPath, limitsFor(cfg))
	if err != nil {
		return nil, err
	}
	if err := seedCatalog(ctx, db, cfg.RecipesFile); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func output(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
