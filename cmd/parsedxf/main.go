package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/app"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type output struct {
	Success         bool       `json:"success"`
	File            string     `json:"file"`
	Data            any        `json:"data"`
	TerrainAnalysis any        `json:"terrainAnalysis"`
	Summary         any        `json:"summary"`
	Stats           *statsJSON `json:"stats,omitempty"`
}

type statsJSON struct {
	Lines     int   `json:"lines"`
	Entities  int   `json:"entities"`
	Skipped   int   `json:"skipped"`
	Dropped   int   `json:"dropped"`
	Truncated bool  `json:"truncated"`
	ElapsedMs int64 `json:"elapsedMs"`
}

func main() {
	var (
		policy  = flag.String("policy", "", "YAML classification policy (defaults to LEVELS_POLICY_FILE)")
		compact = flag.Bool("compact", false, "write JSON without indentation")
		verbose = flag.Bool("v", false, "log parse events to stderr")
	)
	flag.Usage = func() {
		printError("usage: parsedxf [flags] <file.dxf>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := app.NewLogger(false, level)
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	cfg.LLM.APIKey = "" // text only
	if *policy != "" {
		cfg.Policy.File = *policy
	}
	proc, err := app.NewProcessor(cfg, nil, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fileType := constants.FileTypeDXF
	if t, ok := constants.TextExtensions[constants.NormalizeExt(filepath.Ext(path))]; ok {
		fileType = t
	}

	res, err := proc.ProcessText(context.Background(), string(data), fileType)
	if err != nil {
		var uf *common.UnsupportedFormatError
		if errors.As(err, &uf) {
			printError("Error: %v\n%s\n", err, uf.Suggestion)
			os.Exit(3)
		}
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if err := write(os.Stdout, path, res, !*compact); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func write(w *os.File, path string, res *pipeline.Result, indent bool) error {
	out := output{
		Success:         true,
		File:            path,
		Data:            res.Drawing,
		TerrainAnalysis: res.Drawing.Terrain,
		Summary:         res.Summary,
	}
	if st := res.Meta.Parse; st != nil {
		out.Stats = &statsJSON{
			Lines:     st.Lines,
			Entities:  st.Entities,
			Skipped:   st.Skipped,
			Dropped:   st.Dropped,
			Truncated: st.FoundEntities && !st.Terminated,
			ElapsedMs: st.ElapsedMs,
		}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
