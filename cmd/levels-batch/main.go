package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joseph-ayodele/levels-ingest/internal/app"
	"github.com/joseph-ayodele/levels-ingest/internal/async"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/export"
	"github.com/joseph-ayodele/levels-ingest/internal/ingest"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
	"github.com/joseph-ayodele/levels-ingest/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir        = flag.String("dir", "", "directory to process drawings from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to <dir>/levels.xlsx)")
		jsonDir    = flag.String("json-dir", "", "directory for per-file JSON results (optional, defaults to <dir>/levels-json)")
		exts       = flag.String("ext", "", "comma-separated extensions to include (default: every supported type)")
		workers    = flag.Int("workers", 4, "files processed concurrently")
		timeout    = flag.Duration("timeout", 3*time.Minute, "per-file processing timeout")
		policy     = flag.String("policy", "", "YAML classification policy (defaults to LEVELS_POLICY_FILE)")
		skipHidden = flag.Bool("skip-hidden", true, "skip dot files and directories")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "levels.xlsx")
	}
	if *jsonDir == "" {
		*jsonDir = filepath.Join(*dir, "levels-json")
	}

	cfg := common.LoadConfig()
	logger := app.NewLogger(true, cfg.Log.Level)
	if *policy != "" {
		cfg.Policy.File = *policy
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := app.NewProcessor(cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	var include []string
	if *exts != "" {
		include = strings.Split(*exts, ",")
	}
	files, stats, err := ingest.ScanDirectory(*dir, include, *skipHidden)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete", "dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	if len(files) == 0 {
		logger.Warn("no drawings found", "dir", *dir)
		return
	}
	if err := os.MkdirAll(*jsonDir, 0o755); err != nil {
		logger.Error("failed to create json dir", "dir", *jsonDir, "error", err)
		os.Exit(1)
	}

	byPath := make(map[string]ingest.File, len(files))
	jobs := make([]async.Job, 0, len(files))
	for _, f := range files {
		byPath[f.Path] = f
		jobs = append(jobs, async.Job{Path: f.Path, SubmittedAt: time.Now()})
	}

	var mu sync.Mutex
	results := make(map[string]*pipeline.Result, len(files))

	pool := async.NewPool(logger, async.WithWorkers(*workers), async.WithProcessTimeout(*timeout))
	outcomes := pool.Run(ctx, jobs, func(ctx context.Context, job async.Job) error {
		f := byPath[job.Path]
		res, err := ingest.Process(ctx, proc, f)
		if err != nil {
			return err
		}
		if err := writeJSON(*dir, *jsonDir, f.Path, res); err != nil {
			return err
		}
		mu.Lock()
		results[f.Path] = res
		mu.Unlock()
		return nil
	})

	drawings := make([]export.Drawing, 0, len(outcomes))
	var failed int
	for _, o := range outcomes {
		name := relName(*dir, o.Job.Path)
		if o.Err != nil {
			failed++
			drawings = append(drawings, export.Drawing{Name: name, Outcome: "ERROR: " + o.Err.Error()})
			continue
		}
		res := results[o.Job.Path]
		drawings = append(drawings, export.Drawing{
			Name:    name,
			Outcome: string(res.Meta.Outcome),
			Drawing: res.Drawing,
			Summary: res.Summary,
		})
	}

	xlsx, err := export.NewService(logger).DrawingsXLSX(context.WithoutCancel(ctx), drawings)
	if err != nil {
		logger.Error("failed to export workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"files", len(outcomes),
		"failed", failed,
		"workbook", *out,
		"json_dir", *jsonDir,
	)
	if failed > 0 {
		os.Exit(3)
	}
}

// writeJSON stores one result as <jsonDir>/<relative path>.json in the HTTP response shape.
func writeJSON(root, jsonDir, path string, res *pipeline.Result) error {
	target := filepath.Join(jsonDir, relName(root, path)+".json")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(server.NewDrawingResponse(res), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(target, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func relName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return rel
}
