package dictionary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoSources is returned when a catalog has nothing enabled.
var ErrNoSources = errors.New("no enabled dictionary sources")

// DefaultParallelism bounds concurrent file reads when Loader.Parallelism is
// not set.
const DefaultParallelism = 4

// Inserter receives entries in load order. It reports whether the entry was
// new.
type Inserter interface {
	Add(key, value, desc string, priority int) bool
}

// SourceStats describes how one source fared.
type SourceStats struct {
	Name     string
	Path     string
	Entries  int
	Inserted int
	Err      error
}

// Stats summarizes a Load call.
type Stats struct {
	Sources    int
	Loaded     int
	Failed     int
	Entries    int
	Inserted   int
	Duplicates int
	Skipped    int
	Duration   time.Duration
	PerSource  []SourceStats
}

// Loader reads dictionary files and feeds them to an Inserter.
type Loader struct {
	// Dir resolves relative source paths.
	Dir         string
	Parallelism int
}

// NewLoader returns a loader resolving relative paths against dir.
func NewLoader(dir string, parallelism int) *Loader {
	return &Loader{Dir: dir, Parallelism: parallelism}
}

// Resolve returns the on-disk path of src.
func (l *Loader) Resolve(src Source) string {
	if filepath.IsAbs(src.Path) || l.Dir == "" {
		return src.Path
	}
	return filepath.Join(l.Dir, src.Path)
}

// Load reads every enabled source and inserts its entries into sink.
//
// Files are read concurrently, but insertion is sequential: sources in
// descending priority (catalog order on ties), entries in file order. A
// source that cannot be read is logged and skipped; Load fails only when
// every enabled source failed or ctx was cancelled.
func (l *Loader) Load(ctx context.Context, sources []Source, sink Inserter) (Stats, error) {
	start := time.Now()
	enabled := Enabled(sources)
	stats := Stats{Sources: len(enabled)}
	if len(enabled) == 0 {
		return stats, ErrNoSources
	}

	parallelism := l.Parallelism
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}

	results := make([][]Entry, len(enabled))
	readErrs := make([]error, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, src := range enabled {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries, err := ReadFile(l.Resolve(src))
			if err != nil {
				readErrs[i] = err
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	var failures []error
	for i, src := range enabled {
		ss := SourceStats{Name: src.Name, Path: l.Resolve(src), Err: readErrs[i]}
		if ss.Err != nil {
			log.Warnf("Failed to load dictionary %s: %v", src.Name, ss.Err)
			failures = append(failures, fmt.Errorf("%s: %w", src.Name, ss.Err))
			stats.Failed++
			stats.PerSource = append(stats.PerSource, ss)
			continue
		}

		for _, e := range results[i] {
			if e.Text == "" {
				stats.Skipped++
				continue
			}
			ss.Entries++
			if sink.Add(NormalizeKey(e.Key, src.Punctuation), e.Text, e.Desc, src.Priority) {
				ss.Inserted++
			}
		}
		results[i] = nil

		stats.Loaded++
		stats.Entries += ss.Entries
		stats.Inserted += ss.Inserted
		stats.Duplicates += ss.Entries - ss.Inserted
		stats.PerSource = append(stats.PerSource, ss)
		log.Debugf("Loaded dictionary %s: %d entries (%d new, priority %d)",
			src.Name, ss.Entries, ss.Inserted, src.Priority)
	}

	stats.Duration = time.Since(start)
	if stats.Loaded == 0 {
		return stats, fmt.Errorf("all %d dictionaries failed: %w", stats.Failed, errors.Join(failures...))
	}
	return stats, nil
}
