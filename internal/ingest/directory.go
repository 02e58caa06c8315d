// Package ingest finds drawing files on the local filesystem and loads them as uploads.
package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// File is one matched drawing.
type File struct {
	Path   string
	Ext    string
	Source constants.Source
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// DefaultExtensions lists every extension either front-end accepts.
func DefaultExtensions() []string {
	exts := make([]string, 0, len(constants.TextExtensions)+len(constants.DocumentExtensions))
	for e := range constants.TextExtensions {
		exts = append(exts, e)
	}
	for e := range constants.DocumentExtensions {
		exts = append(exts, e)
	}
	return exts
}

// ScanDirectory walks root, filters by includeExts (or DefaultExtensions), skips hidden
// entries if requested, and returns matches in walk (lexical) order. Unreadable entries
// are counted as failed and skipped.
func ScanDirectory(root string, includeExts []string, skipHidden bool) ([]File, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if len(includeExts) == 0 {
		includeExts = DefaultExtensions()
	}
	exts := map[string]struct{}{}
	for _, e := range includeExts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			exts[e] = struct{}{}
		}
	}

	var files []File
	var stats DirStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		source, ok := SourceForExt(ext)
		if !ok {
			return nil
		}
		stats.Matched++
		files = append(files, File{Path: path, Ext: ext, Source: source})
		return nil
	})
	if err != nil {
		return files, stats, fmt.Errorf("walk: %w", err)
	}
	return files, stats, nil
}

// SourceForExt reports which front-end handles ext.
func SourceForExt(ext string) (constants.Source, bool) {
	ext = constants.NormalizeExt(ext)
	if _, ok := constants.TextExtensions[ext]; ok {
		return constants.SourceText, true
	}
	if _, ok := constants.DocumentExtensions[ext]; ok {
		return constants.SourceDocument, true
	}
	return "", false
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Process reads f and runs it through proc with the front-end its extension selects.
func Process(ctx context.Context, proc *pipeline.Processor, f File) (*pipeline.Result, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	switch f.Source {
	case constants.SourceText:
		return proc.ProcessText(ctx, string(data), constants.TextExtensions[f.Ext])
	case constants.SourceDocument:
		return proc.ProcessDocument(ctx, base64.StdEncoding.EncodeToString(data), filepath.Base(f.Path))
	}
	return nil, fmt.Errorf("no front-end for %q", f.Ext)
}
