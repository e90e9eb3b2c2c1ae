package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/boat-detect/internal/imaging"
)

// DirSource reads the PNG, JPEG and GIF files of a directory in lexical
// order. Other files are ignored.
type DirSource struct {
	dir    string
	paths  []string
	next   int
	width  int
	height int
	cache  *imaging.FrameCache
	logger *slog.Logger
}

// NewDirSource lists dir and returns a source over its image files. Frames
// are resized to width x height; zero keeps each file's own size.
func NewDirSource(dir string, width, height int, logger *slog.Logger) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imaging.FormatOf(e.Name()) == "unknown" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	logger.Info("opened frame directory", "dir", dir, "frames", len(paths))
	return &DirSource{
		dir:    dir,
		paths:  paths,
		width:  width,
		height: height,
		cache:  imaging.NewFrameCache(),
		logger: logger,
	}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Next implements FrameSource.
func (s *DirSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.paths) {
		return Frame{}, io.EOF
	}

	path := s.paths[s.next]
	seq := s.next
	s.next++

	img, err := s.cache.Load(path)
	if err != nil {
		return Frame{}, err
	}
	// Frames are read once; keep the cache from growing with the sequence.
	s.cache.Evict(path)

	f := Frame{
		Image:    imaging.FitFrame(img, s.width, s.height),
		Sequence: seq,
		Name:     filepath.Base(path),
	}
	if info, err := os.Stat(path); err == nil {
		f.CapturedAt = info.ModTime()
	}
	return f, nil
}

// Close implements FrameSource.
func (s *DirSource) Close() error {
	s.cache.Clear()
	return nil
}
