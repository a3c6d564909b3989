package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// OutputLocator resolves where a run's artifacts live on disk. The layout is
// <root>/<run-date>/<symbol>/<report files>.
type OutputLocator struct {
	root string
}

func NewOutputLocator(outputRoot string) *OutputLocator {
	return &OutputLocator{root: outputRoot}
}

// Locate returns the output directory for one symbol on one run date. The
// path is computed, not checked; it may not exist yet.
func (l *OutputLocator) Locate(runDate, symbol string) string {
	return filepath.Join(l.root, runDate, symbol)
}

// ListSymbols returns the symbols that have an output directory for the run
// date, sorted. A missing run-date directory yields an empty list, not an
// error.
func (l *OutputLocator) ListSymbols(runDate string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, runDate))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ListArtifacts returns the report files written for one symbol on one run
// date, sorted. A missing directory yields an empty list, not an error.
func (l *OutputLocator) ListArtifacts(runDate, symbol string) ([]string, error) {
	entries, err := os.ReadDir(l.Locate(runDate, symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
