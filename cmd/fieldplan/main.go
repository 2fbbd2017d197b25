package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/excel"
	"github.com/derekprior/fieldplan/internal/feasibility"
	"github.com/derekprior/fieldplan/internal/schedule"
	"github.com/derekprior/fieldplan/internal/validator"
)

const (
	defaultConfigFile = "fieldplan.yaml"
	configEnv         = "FIELDPLAN_CONFIG"
	logLevelEnv       = "FIELDPLAN_LOG_LEVEL"
)

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if env := os.Getenv(configEnv); env != "" {
		return env, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", eris.Errorf("no config file found. Either create %s in the current directory, set %s, or pass --config", defaultConfigFile, configEnv)
}

// resolveVenue picks the venue named by the flag, or the only venue in the file.
func resolveVenue(cfg *config.Config, venueFlag string) (*config.Venue, error) {
	if venueFlag == "" {
		if len(cfg.Venues) == 1 {
			return &cfg.Venues[0], nil
		}
		return nil, eris.Errorf("%d venues configured; choose one with --venue", len(cfg.Venues))
	}
	v, ok := cfg.Venue(venueFlag)
	if !ok {
		return nil, eris.Wrapf(config.ErrInvalidConfig, "unknown venue %q", venueFlag)
	}
	return v, nil
}

func setupLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return eris.Wrapf(err, "invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

func main() {
	_ = godotenv.Load()

	var logLevel string
	rootCmd := &cobra.Command{
		Use:   "fieldplan",
		Short: "Tournament venue feasibility and draw generator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}
	defaultLevel := os.Getenv(logLevelEnv)
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "Log level (debug, info, warn, error)")

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $FIELDPLAN_CONFIG or fieldplan.yaml)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter fieldplan.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var analyzeVenue, analyzeOutput string
	var analyzeJSON bool
	analyzeCmd := &cobra.Command{
		Use:          "analyze",
		Short:        "Check whether each venue can host its categories",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), configPath, analyzeVenue, analyzeOutput, analyzeJSON)
		},
	}
	analyzeCmd.Flags().StringVar(&analyzeVenue, "venue", "", "Only analyze this venue")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Also write the analysis to this Excel file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print results as JSON")

	drawCmd := &cobra.Command{
		Use:   "draw",
		Short: "Generate and validate match draws",
	}

	var drawVenue string
	drawCmd.PersistentFlags().StringVar(&drawVenue, "venue", "", "Venue id (default: the only configured venue)")

	var outputFile string
	var drawJSON bool
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a draw for a venue",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(configPath, drawVenue, outputFile, drawJSON)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "draw.xlsx", "Output Excel file path")
	generateCmd.Flags().BoolVar(&drawJSON, "json", false, "Print the draw as JSON")

	validateCmd := &cobra.Command{
		Use:          "validate <draw.xlsx>",
		Short:        "Validate a (possibly hand-edited) draw workbook",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, drawVenue, args[0])
		},
	}

	drawCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, analyzeCmd, drawCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return eris.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return eris.Wrap(err, "writing config")
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encoding JSON")
	}
	fmt.Println(string(data))
	return nil
}

func runAnalyze(ctx context.Context, configPath, venueID, outputPath string, asJSON bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return eris.Wrap(err, "loading config")
	}

	venues := cfg.Venues
	if venueID != "" {
		v, err := resolveVenue(cfg, venueID)
		if err != nil {
			return err
		}
		venues = []config.Venue{*v}
	}

	analyses, err := feasibility.AnalyzeVenues(ctx, venues, cfg.Categories)
	if err != nil {
		return eris.Wrap(err, "analyzing venues")
	}

	for _, a := range analyses {
		log.Debug().
			Str("venue", a.VenueID).
			Int("available_minutes", a.Capacity.TotalAvailableMinutes).
			Int("slot_minutes", a.Capacity.MatchSlotMinutes).
			Int("total_slots", a.Capacity.TotalSlots).
			Int("required_matches", a.Requirement.GrandTotal).
			Msg("capacity")
		if a.Result.Verdict == feasibility.Infeasible {
			log.Warn().Str("venue", a.VenueID).Int("deficit", -a.Result.SlotsSurplus).Msg("venue cannot host its categories")
		}
	}

	if outputPath != "" {
		f, err := excel.GenerateFeasibility(analyses)
		if err != nil {
			return eris.Wrap(err, "generating Excel")
		}
		if err := f.SaveAs(outputPath); err != nil {
			return eris.Wrap(err, "saving file")
		}
		log.Info().Str("path", outputPath).Msg("feasibility workbook saved")
	}

	if asJSON {
		return printJSON(analyses)
	}

	for i, a := range analyses {
		if i > 0 {
			fmt.Println()
		}
		printAnalysis(a)
	}
	return nil
}

func printAnalysis(a feasibility.VenueAnalysis) {
	name := a.VenueName
	if name == "" {
		name = a.VenueID
	}
	fmt.Printf("%s (%s)\n", name, a.VenueID)
	fmt.Printf("  %d available minutes, %d-minute slots, %d fields: %d slots\n",
		a.Capacity.TotalAvailableMinutes, a.Capacity.MatchSlotMinutes, a.Capacity.Fields, a.Capacity.TotalSlots)

	if len(a.Capacity.Days) > 0 {
		fmt.Printf("  %-12s %8s %10s\n", "Day", "Minutes", "Per Field")
		for _, d := range a.Capacity.Days {
			label := d.Label
			if label == "" {
				label = fmt.Sprintf("Day %d", d.Day)
			}
			fmt.Printf("  %-12s %8d %10d\n", label, d.Minutes, d.SlotsPerField)
		}
	}

	if len(a.Requirement.Order) > 0 {
		fmt.Printf("\n  %-12s %6s %6s %6s %6s %6s\n", "Category", "Teams", "Groups", "Group", "Cross", "Total")
		for _, id := range a.Requirement.Order {
			cr := a.Requirement.PerCategory[id]
			fmt.Printf("  %-12s %6d %6d %6d %6d %6d\n",
				cr.CategoryID, cr.EnrolledTeams, cr.GroupCount, cr.MatchesInGroupStage, cr.MatchesInCrossStage, cr.TotalMatches)
		}
		fmt.Printf("  %-12s %34d\n", "Total", a.Requirement.GrandTotal)
	}

	symbol := "✓"
	switch a.Result.Verdict {
	case feasibility.Marginal:
		symbol = "⚠"
	case feasibility.Infeasible:
		symbol = "✗"
	}
	fmt.Printf("\n%s %s: %s\n", symbol, a.Result.Verdict, a.Result.Narrative)
}

func runGenerate(configPath, venueID, outputPath string, asJSON bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return eris.Wrap(err, "loading config")
	}
	v, err := resolveVenue(cfg, venueID)
	if err != nil {
		return err
	}

	categories := cfg.HostedCategories(v)
	draw, err := schedule.Generate(v, categories, cfg.ArrivalConstraints)
	if err != nil {
		return eris.Wrap(err, "generating draw")
	}
	slots := schedule.GenerateSlots(v, draw.SlotMinutes)

	log.Debug().
		Str("venue", v.ID).
		Int("categories", len(categories)).
		Int("slots", len(slots)).
		Int("matches", len(draw.Matches)).
		Msg("draw generated")
	if n := len(draw.Unscheduled); n > 0 {
		log.Warn().Str("venue", v.ID).Int("unscheduled", n).Msg("venue ran out of slots")
	}

	f, err := excel.Generate(v, draw, slots)
	if err != nil {
		return eris.Wrap(err, "generating Excel")
	}
	if err := f.SaveAs(outputPath); err != nil {
		return eris.Wrap(err, "saving file")
	}

	if asJSON {
		if err := printJSON(draw); err != nil {
			return err
		}
	} else {
		printDraw(draw, len(slots), outputPath)
	}

	if len(draw.Unscheduled) > 0 {
		return eris.Errorf("draw is incomplete: %d of %d matches scheduled",
			len(draw.Matches), len(draw.Matches)+len(draw.Unscheduled))
	}
	return nil
}

func printDraw(draw *schedule.Draw, slots int, outputPath string) {
	if len(draw.Unscheduled) == 0 {
		fmt.Printf("✓ All %d matches scheduled into %d slots\n", len(draw.Matches), slots)
	}

	fmt.Println("\nGroups:")
	for _, cg := range draw.Groups {
		for _, g := range cg.Groups {
			fmt.Printf("  %-10s %-3s %v\n", cg.CategoryID, g.Label, g.TeamNames())
		}
	}

	if conflicts := draw.Conflicts(); len(conflicts) > 0 {
		fmt.Printf("\nConflicts (%d):\n", len(conflicts))
		for _, m := range conflicts {
			fmt.Printf("  ⚠ day %d %s field %d, %s vs %s: %s\n", m.Day, m.Start, m.Field, m.TeamA, m.TeamB, m.Conflict.Reason)
		}
	} else {
		fmt.Println("\n✓ No conflicts")
	}

	for _, w := range draw.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}

	fmt.Printf("\n✓ Draw saved to %s\n", outputPath)
}

func runValidate(configPath, venueID, drawPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return eris.Wrap(err, "loading config")
	}
	v, err := resolveVenue(cfg, venueID)
	if err != nil {
		return err
	}

	violations, err := validator.Validate(cfg, v.ID, drawPath)
	if err != nil {
		return eris.Wrap(err, "validating")
	}

	errors := 0
	warnings := 0
	for _, vi := range violations {
		where := ""
		if vi.Row > 0 {
			where = fmt.Sprintf(" (row %d)", vi.Row)
		}
		switch vi.Type {
		case "error":
			errors++
			fmt.Printf("✗ %s%s\n", vi.Message, where)
		case "warning":
			warnings++
			fmt.Printf("⚠ %s%s\n", vi.Message, where)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errors, warnings)

	if err := excel.UpdateCategorySheets(drawPath, cfg); err != nil {
		return eris.Wrap(err, "updating category sheets")
	}
	fmt.Printf("✓ Category sheets updated in %s\n", drawPath)

	if errors > 0 {
		return eris.Errorf("%d violations found", errors)
	}
	return nil
}
