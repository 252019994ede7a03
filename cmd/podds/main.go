package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/cache"
	"github.com/richard-senior/podds/pkg/datasource"
	"github.com/richard-senior/podds/pkg/engine"
	"github.com/richard-senior/podds/pkg/server"
	"github.com/richard-senior/podds/pkg/store"
)

// Exit codes per failed stage
const (
	exitFetch   = 2
	exitPersist = 3
	exitPredict = 4
	exitServe   = 5
)

const defaultFeedURL = "https://ews.500.com"

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	dbPath := flag.String("db", "podds.db", "Path to the sqlite database")
	feedURL := flag.String("feed", defaultFeedURL, "Score feed base URL")
	redisURL := flag.String("redis", "", "Redis URL for response caching (optional)")
	port := flag.String("port", "8080", "Port for the REST server")
	flag.Parse()

	logger.SetShowDateTime(true)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	command := flag.Arg(0)
	if command == "" {
		fmt.Fprintln(os.Stderr, "usage: podds [flags] fetch|predict|serve")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := store.InitDatabase(*dbPath); err != nil {
		logger.Error("Failed to open database", err)
		os.Exit(exitPersist)
	}
	defer store.CloseDatabase()
	if err := createTables(); err != nil {
		logger.Error("Failed to create tables", err)
		os.Exit(exitPersist)
	}

	ds := datasource.New(*feedURL, openCache(*redisURL))

	switch command {
	case "fetch":
		runFetch(ds)
	case "predict":
		runPredict(ds)
	case "serve":
		runServe(ds, *port)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(1)
	}
}

func createTables() error {
	if err := store.CreateTable(&store.Fixture{}); err != nil {
		return err
	}
	return store.CreateTable(&store.HistoryMatch{})
}

// openCache returns nil when no redis URL is configured or the
// connection fails. Caching is an optimisation, never a requirement.
func openCache(redisURL string) *cache.RedisCache {
	if redisURL == "" {
		return nil
	}
	rc, err := cache.NewRedisCache(redisURL, "podds")
	if err != nil {
		logger.Warn("Proceeding without cache", err)
		return nil
	}
	return rc
}

// runFetch resolves the current period and persists its fixtures and
// match histories
func runFetch(ds *datasource.Datasource) {
	ctx := context.Background()

	period, fixtures, err := ds.FetchPeriod(ctx)
	if err != nil {
		logger.Error("Fetch failed", err)
		os.Exit(exitFetch)
	}

	for _, f := range fixtures {
		if err := store.Save(f); err != nil {
			logger.Error("Failed to persist fixture", f.FixtureID, err)
			os.Exit(exitPersist)
		}
	}
	logger.Info("Fetched period", period, len(fixtures), "fixtures")
}

// runPredict prices every unpredicted fixture in the current period
// and stores the results
func runPredict(ds *datasource.Datasource) {
	ctx := context.Background()

	period, err := ds.CurrentPeriod(ctx)
	if err != nil {
		logger.Error("Failed to resolve period", err)
		os.Exit(exitFetch)
	}

	fixtures, err := store.FixturesForPeriod(period)
	if err != nil {
		logger.Error("Failed to load fixtures", err)
		os.Exit(exitPersist)
	}
	if len(fixtures) == 0 {
		logger.Error("No fixtures stored for period, run fetch first", period)
		os.Exit(exitPredict)
	}

	requests := make([]engine.PredictionRequest, len(fixtures))
	for i, f := range fixtures {
		history, err := store.HistoryForTeams(f.HomeName, f.AwayName)
		if err != nil {
			logger.Error("Failed to load history", f.FixtureID, err)
			os.Exit(exitPersist)
		}
		// History rows key teams by short name
		requests[i] = engine.PredictionRequest{
			HomeID:   f.HomeName,
			AwayID:   f.AwayName,
			HomeName: f.HomeName,
			AwayName: f.AwayName,
			History:  history,
		}
	}

	predictions := engine.PredictAll(requests)

	var failed int
	for i, p := range predictions {
		if p == nil {
			failed++
			continue
		}
		fixtures[i].ApplyPrediction(p)
		if err := store.Save(fixtures[i]); err != nil {
			logger.Error("Failed to persist prediction", fixtures[i].FixtureID, err)
			os.Exit(exitPersist)
		}
		fmt.Printf("%-20s v %-20s  %.1f%% / %.1f%% / %.1f%%  (%d-%d)\n",
			fixtures[i].HomeName, fixtures[i].AwayName,
			p.Outcome.HomeWin*100, p.Outcome.Draw*100, p.Outcome.AwayWin*100,
			p.LikelyHomeGoals, p.LikelyAwayGoals)
	}

	if failed == len(predictions) {
		logger.Error("Every prediction failed")
		os.Exit(exitPredict)
	}
	logger.Info("Predicted period", period, len(predictions)-failed, "of", len(predictions))
}

// runServe starts the REST API
func runServe(ds *datasource.Datasource, port string) {
	srv := server.NewServer(port, ds)
	if err := srv.Start(); err != nil {
		logger.Error("Server stopped", err)
		os.Exit(exitServe)
	}
}
