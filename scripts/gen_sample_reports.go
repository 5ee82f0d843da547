// Command gen_sample_reports renders the reference run as a sample report in
// every export format, for eyeballing layout changes.
//
// Usage:
//
//	go run ./scripts/gen_sample_reports.go -out /tmp/reports
//
// It plays the reference agent timeline at high speed, fetches the built-in
// insight catalog and writes Intelligence_Report_sample.{pdf,md,json}.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/timeline"
)

func main() {
	var (
		outDir   string
		query    string
		scenario string
		speedup  float64
	)

	flag.StringVar(&outDir, "out", ".", "Output directory")
	flag.StringVar(&query, "query", report.DefaultQuery, "Query shown in the report")
	flag.StringVar(&scenario, "scenario", string(demo.ScenarioSuccess), "Agent scenario: success, flaky, fail")
	flag.Float64Var(&speedup, "speedup", 1000, "How much faster than real time to play the timeline")
	flag.Parse()

	if err := run(outDir, query, scenario, speedup); err != nil {
		fmt.Fprintf(os.Stderr, "gen_sample_reports: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir, query, scenario string, speedup float64) error {
	sc, err := demo.ParseScenario(scenario)
	if err != nil {
		return err
	}
	p, err := demo.NewPipeline(demo.Config{Preset: demo.PresetNormal, Scenario: sc})
	if err != nil {
		return err
	}
	if speedup <= 0 {
		speedup = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	seq := timeline.New().WithPolicy(p.Policy)
	r, err := seq.Start(ctx, p.Names, p.Schedule.Scale(1/speedup), nil, nil)
	if err != nil {
		return err
	}
	if err := r.Wait(ctx); err != nil {
		return fmt.Errorf("timeline did not finish: %w", err)
	}

	repo := insight.Default()
	cards, err := insight.FetchAll(ctx, repo, demo.TopicsFor(p.Agents, repo))
	if err != nil {
		return err
	}

	doc := report.Build("sample", query, cards, r.Snapshot(), time.Now())

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	for _, f := range []report.Format{report.FormatPDF, report.FormatMarkdown, report.FormatJSON} {
		exp, err := report.ExporterFor(f)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, report.FileName(doc.ID, f))
		if err := report.WriteFile(ctx, exp, doc, path); err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}
