package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/database"
	"autism-diet-planner/internal/diet"
	"autism-diet-planner/internal/metrics"
	"autism-diet-planner/internal/planner"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config.LoadEnv()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "sample":
		sampleCmd := flag.NewFlagSet("sample", flag.ExitOnError)
		dietFlag := sampleCmd.String("diet", string(diet.Vegetarian), "Diet type: Vegetarian or Non-Vegetarian")
		allergiesFlag := sampleCmd.String("allergies", "", "Comma-separated allergies, e.g. Gluten,Nuts")
		format := sampleCmd.String("format", "text", "Output format: text, csv or xlsx")
		out := sampleCmd.String("out", "", "Write to this file instead of stdout (required for xlsx)")
		sampleCmd.Parse(os.Args[2:])

		if err := runSample(*dietFlag, *allergiesFlag, *format, *out); err != nil {
			log.Fatal().Err(err).Msg("sample failed")
		}
	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Show the last N days")
		dbPath := usageCmd.String("db", os.Getenv("DATABASE_PATH"), "Path to the usage database")
		usageCmd.Parse(os.Args[2:])

		store, closeDB := openStore(*dbPath)
		defer closeDB()

		usage, err := store.GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read usage")
		}
		if len(usage) == 0 {
			fmt.Println("No usage recorded yet.")
		}
		for _, d := range usage {
			fmt.Printf("%s  %4d plans  %4d fallbacks  %7d tokens\n", d.Date, d.TotalExecution, d.Fallbacks, d.TotalPrompt+d.TotalCompletion)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		dbPath := cleanupCmd.String("db", os.Getenv("DATABASE_PATH"), "Path to the usage database")
		cleanupCmd.Parse(os.Args[2:])

		store, closeDB := openStore(*dbPath)
		defer closeDB()

		affected, err := store.Cleanup(ctx, *days)
		if err != nil {
			log.Fatal().Err(err).Msg("cleanup failed")
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runSample(dietFlag, allergiesFlag, format, out string) error {
	dietType, ok := diet.ParseDietType(dietFlag)
	if !ok {
		return fmt.Errorf("unknown diet type %q", dietFlag)
	}
	allergies := diet.NewAllergySet(strings.Split(allergiesFlag, ",")...)
	plan := planner.Build(dietType, allergies)

	var write func(io.Writer) error
	switch format {
	case "text":
		write = func(w io.Writer) error { return planner.WriteTable(w, plan) }
	case "csv":
		write = func(w io.Writer) error { return planner.WriteCSV(w, plan) }
	case "xlsx":
		if out == "" {
			return fmt.Errorf("xlsx output needs -out")
		}
		write = func(w io.Writer) error {
			data, err := planner.XLSX(plan)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if out == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func openStore(path string) (*metrics.Store, func()) {
	if path == "" {
		log.Fatal().Msg("no database configured, set DATABASE_PATH or pass -db")
	}
	db, err := database.NewDB(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open usage database")
	}
	return metrics.NewStore(db.SQL), func() { db.Close() }
}

func printUsage() {
	fmt.Println("Usage: diet-cli <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  sample             Print the fallback plan for a diet type and allergies")
	fmt.Println("  usage              Show recent generation usage")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
