package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/danuhaha/telestats/internal/api"
	"github.com/danuhaha/telestats/internal/config"
	"github.com/danuhaha/telestats/internal/inference"
	"github.com/danuhaha/telestats/internal/ingest"
	"github.com/danuhaha/telestats/internal/message"
	"github.com/danuhaha/telestats/internal/report"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(cfg, os.Args[2:])
	case "analyze":
		err = runAnalyze(cfg, os.Args[2:])
	case "serve":
		err = runServe(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: telestats <command> [flags]

commands:
  parse    normalize a chat export into a snapshot file
  analyze  score conversations and write aggregate reports
  serve    expose a snapshot over a read-only HTTP API`)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// parseExport runs the right adapter for an export path. Auto-detection
// favors HTML when the path is an .html file or a directory containing
// any.
func parseExport(path, format, self, counterpart string) ([]message.Message, error) {
	if format == "auto" {
		format = "json"
		if strings.EqualFold(filepath.Ext(path), ".html") {
			format = "html"
		} else if matches, _ := filepath.Glob(filepath.Join(path, "*.html")); len(matches) > 0 {
			format = "html"
		}
	}
	switch format {
	case "json":
		return ingest.ParseJSONExport(path, self, counterpart)
	case "html":
		return ingest.ParseHTMLExport(path, self, counterpart)
	}
	return nil, fmt.Errorf("unknown format %q (want auto, json or html)", format)
}

func runParse(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	export := fs.String("export", "", "path to an export file or directory")
	format := fs.String("format", "auto", "export format: auto, json or html")
	self := fs.String("you", "", "your display name")
	counterpart := fs.String("partner", "", "the counterpart's display name")
	out := fs.String("out", "telestats_messages.json", "snapshot output path")
	fs.Parse(args)

	if *export == "" || *self == "" || *counterpart == "" {
		return fmt.Errorf("-export, -you and -partner are required")
	}

	msgs, err := parseExport(*export, *format, *self, *counterpart)
	if err != nil {
		return err
	}
	return message.Save(*out, msgs)
}

func runAnalyze(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	snapshot := fs.String("snapshot", "", "path to a snapshot file")
	export := fs.String("export", "", "path to an export file or directory")
	format := fs.String("format", "auto", "export format: auto, json or html")
	self := fs.String("you", "", "your display name")
	counterpart := fs.String("partner", "", "the counterpart's display name")
	outDir := fs.String("out-dir", "analysis_outputs", "directory for report files")
	gapMin := fs.Int("gap-min", cfg.GapMinutes, "conversation gap in minutes")
	fs.Parse(args)

	var msgs []message.Message
	var err error
	switch {
	case *snapshot != "":
		msgs, err = message.Load(*snapshot)
	case *export != "":
		if *self == "" || *counterpart == "" {
			return fmt.Errorf("-you and -partner are required with -export")
		}
		msgs, err = parseExport(*export, *format, *self, *counterpart)
	default:
		return fmt.Errorf("either -snapshot or -export is required")
	}
	if err != nil {
		return err
	}

	scorers := report.Scorers{
		Emotion:  inference.NewClient(cfg.HFToken, cfg.EmotionModel),
		Toxicity: inference.NewClient(cfg.HFToken, cfg.ToxicityModel),
		Topics:   inference.NewClient(cfg.HFToken, cfg.TopicsModel),
	}

	rep, err := report.Build(context.Background(), msgs, scorers, report.Options{
		Gap:                time.Duration(*gapMin) * time.Minute,
		MinTextLen:         cfg.MinTextLen,
		MaxPerConversation: cfg.MaxPerConvo,
		MaxTotal:           cfg.MaxTotal,
		Threshold:          cfg.ToxicCutoff,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeReport(*outDir, rep); err != nil {
		return err
	}
	printSummary(report.Summarize(rep.Rows))
	return nil
}

func writeReport(dir string, rep *report.Report) error {
	byConvo, err := os.Create(filepath.Join(dir, "sentiment_topics_by_conversation.csv"))
	if err != nil {
		return fmt.Errorf("create conversation report: %w", err)
	}
	defer byConvo.Close()
	if err := report.WriteCSV(byConvo, rep.Rows); err != nil {
		return err
	}

	for name, scores := range map[string]map[string]float64{
		"overall_emotions.csv": rep.Overall.Emotions,
		"overall_topics.csv":   rep.Overall.Topics,
	} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		err = report.WriteScores(f, scores)
		f.Close()
		if err != nil {
			return err
		}
	}

	toxicity := fmt.Sprintf("%g\n", rep.Overall.ToxicityRate)
	if err := os.WriteFile(filepath.Join(dir, "overall_toxicity.txt"), []byte(toxicity), 0o644); err != nil {
		return fmt.Errorf("write overall toxicity: %w", err)
	}

	slog.Info("reports written", "dir", dir, "run_id", rep.RunID, "conversations", len(rep.Rows))
	return nil
}

func printSummary(s report.Summary) {
	fmt.Printf("Average toxicity rate: %.6f\n", s.AvgToxicity)
	fmt.Println("Top-1 emotion counts:")
	printCounts(s.TopEmotions)
	fmt.Println("Top-1 topic counts:")
	printCounts(s.TopTopics)
}

func printCounts(counts map[string]int) {
	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})
	for _, e := range entries {
		fmt.Printf("  %s: %d\n", e.label, e.count)
	}
}

func runServe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	snapshot := fs.String("snapshot", "", "path to a snapshot file")
	port := fs.Int("port", cfg.Port, "listen port")
	fs.Parse(args)

	if *snapshot == "" {
		return fmt.Errorf("-snapshot is required")
	}
	msgs, err := message.Load(*snapshot)
	if err != nil {
		return err
	}

	srv := api.NewServer(*port, msgs)
	return srv.Start()
}
