// Command evaluate runs the trip evaluation pipeline once, outside the
// server, over JSON dumps on disk or a remote datastore.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jengzang/trip-eval-backend-go/internal/analysis"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/middleware"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"

	_ "github.com/jengzang/trip-eval-backend-go/internal/analysis/evaluation"
)

func main() {
	cfg := config.Load()

	specID := flag.String("spec", "", "Evaluation spec id (required)")
	author := flag.String("author", cfg.AuthorEmail, "Datastore user that owns the spec")
	dataDir := flag.String("data", cfg.DataDir, "Directory of per-user JSON dumps")
	url := flag.String("url", cfg.DatastoreURL, "Remote datastore URL (overrides -data)")
	tuningPath := flag.String("tuning", cfg.TuningPath, "Optional tuning JSON")
	analyzers := flag.String("analyzers", "", "Comma-separated analyzers (default: all)")
	out := flag.String("out", "", "Output file for the evaluated phone view (default: stdout)")
	geoOut := flag.String("geojson", "", "Write android reference trajectories as GeoJSON")
	token := flag.String("token", "", "Print an API token for this subject and exit")
	flag.Parse()

	if *token != "" {
		t, err := middleware.IssueToken(cfg.JWTSecret, *token, 24*time.Hour, time.Now())
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(t)
		return
	}

	if *specID == "" || *author == "" {
		fmt.Fprintln(os.Stderr, "Usage: evaluate -spec <id> -author <email> [-data dir | -url url] [-out file]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	tuning := config.DefaultTuningConfig()
	if *tuningPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(*tuningPath); err != nil {
			log.Fatalf("Failed to load tuning: %v", err)
		}
	}

	clock := timeutil.RealClock{}
	var store datastore.Retriever = datastore.NewFileStore(*dataDir)
	if *url != "" {
		store = datastore.NewRetrying(datastore.NewHTTPStore(*url, nil), tuning.GetRetryDelay(), clock)
	}

	ctx := context.Background()
	spec, err := evalspec.Load(ctx, store, *author, *specID, timeutil.UnixSeconds(clock))
	if err != nil {
		log.Fatalf("Failed to load spec: %v", err)
	}

	var names []string
	if *analyzers != "" {
		names = strings.Split(*analyzers, ",")
	}

	pipeline := analysis.NewPipeline(store, tuning, clock)
	pipeline.Progress = func(p analysis.Progress) {
		log.Printf("[%d/%d] %s done (%d%%)", p.Done, p.Total, p.Stage, p.Percent)
	}
	run, err := pipeline.Evaluate(ctx, spec, names)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	summary := phoneview.Summarize(run.View)
	log.Printf("Evaluated %d devices, %d trips, %d sections, %d references",
		summary.Devices, summary.TripRanges, summary.SectionRanges, summary.References)
	for _, w := range summary.Warnings {
		log.Printf("Warning: %s", w)
	}

	if err := writeJSON(*out, run.View); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
	if *geoOut != "" {
		if err := writeJSON(*geoOut, phoneview.ReferenceFeatures(run.View, phoneview.OSAndroid)); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
	}
}

func writeJSON(path string, v interface{}) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
