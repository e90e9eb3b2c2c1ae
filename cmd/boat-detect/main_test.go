package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/boat-detect/internal/config"
	"github.com/ironsheep/boat-detect/internal/detection"
	"github.com/ironsheep/boat-detect/internal/sink"
	"github.com/ironsheep/boat-detect/internal/source"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// boatFrame is a white sky over a gray sea with a dark hull on the horizon.
func boatFrame(width, height, hullX int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, height/2, width, height), &image.Uniform{C: color.Gray{Y: 100}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(hullX, height/2-6, hullX+3, height/2+6), &image.Uniform{C: color.Gray{Y: 20}}, image.Point{}, draw.Src)
	return img
}

func flatFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: 90}}, image.Point{}, draw.Src)
	return img
}

type pipelineFixture struct {
	src *source.DirSource
	det *detection.Detector
	buf *bytes.Buffer
	out *sink.JSONLSink
}

func newPipelineFixture(t *testing.T, frames map[string]image.Image, garbage ...string) *pipelineFixture {
	t.Helper()
	dir := t.TempDir()
	for name, img := range frames {
		writePNG(t, filepath.Join(dir, name), img)
	}
	for _, name := range garbage {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not an image"), 0o644))
	}

	src, err := source.NewDirSource(dir, 0, 0, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	cfg := config.DefaultConfig()
	cfg.FrameWidth, cfg.FrameHeight = 0, 0
	det, err := detection.New(cfg, nil)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	return &pipelineFixture{src: src, det: det, buf: buf, out: sink.NewJSONLSink(buf)}
}

func (f *pipelineFixture) records(t *testing.T) []*sink.Record {
	t.Helper()
	var recs []*sink.Record
	scanner := bufio.NewScanner(bytes.NewReader(f.buf.Bytes()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r, err := sink.FromJSON(scanner.Bytes())
		require.NoError(t, err)
		recs = append(recs, r)
	}
	return recs
}

func TestRunPipeline(t *testing.T) {
	f := newPipelineFixture(t, map[string]image.Image{
		"frame_000.png": boatFrame(200, 100, 120),
		"frame_001.png": boatFrame(200, 100, 120),
		"frame_002.png": flatFrame(200, 100),
		"frame_003.png": boatFrame(200, 100, 122),
	}, "frame_004.png")

	stats, err := runPipeline(context.Background(), f.src, f.det, f.out, runOptions{RunID: "run-1"}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, runStats{Queued: 5, Frames: 4, Analyzed: 3, Skipped: 1, ReadErrors: 1, Written: 3}, stats)
	assert.Equal(t, 3, f.det.FramesSmoothed())

	recs := f.records(t)
	require.Len(t, recs, 3)
	for i, wantSeq := range []int{0, 1, 3} {
		assert.Equal(t, wantSeq, recs[i].Sequence)
		assert.Equal(t, "run-1", recs[i].RunID)
		assert.Equal(t, 200, recs[i].Width)
		assert.Equal(t, 10, recs[i].Band.Bottom-recs[i].Band.Top)
		assert.Nil(t, recs[i].Features)
		assert.False(t, recs[i].CapturedAt.IsZero())
	}
	assert.Equal(t, "frame_003.png", recs[2].Frame)
	assert.NotEqual(t, recs[0].RecordID, recs[1].RecordID)
}

func TestRunPipeline_FeaturesAndDebug(t *testing.T) {
	f := newPipelineFixture(t, map[string]image.Image{
		"a.png": boatFrame(160, 80, 70),
	})
	debugDir := filepath.Join(t.TempDir(), "debug")

	opts := runOptions{RunID: "run-2", Features: true, DebugDir: debugDir}
	_, err := runPipeline(context.Background(), f.src, f.det, f.out, opts, discardLogger())
	require.NoError(t, err)

	recs := f.records(t)
	require.Len(t, recs, 1)
	assert.Len(t, recs[0].Features, 160)

	for _, name := range []string{"roi", "overlay", "features", "detections"} {
		assert.FileExists(t, filepath.Join(debugDir, "frame_000000_"+name+".png"))
	}
}

func TestRunPipeline_GivesUpOnUnreadableStream(t *testing.T) {
	garbage := make([]string, maxReadFailures+2)
	for i := range garbage {
		garbage[i] = fmt.Sprintf("bad_%02d.png", i)
	}
	f := newPipelineFixture(t, nil, garbage...)

	stats, err := runPipeline(context.Background(), f.src, f.det, f.out, runOptions{}, discardLogger())
	assert.Error(t, err)
	assert.Equal(t, maxReadFailures+2, stats.Queued)
	assert.Equal(t, maxReadFailures, stats.ReadErrors)
	assert.Zero(t, stats.Written)
	assert.Zero(t, f.buf.Len())
}

func TestRunPipeline_Cancelled(t *testing.T) {
	f := newPipelineFixture(t, map[string]image.Image{
		"a.png": boatFrame(200, 100, 50),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := runPipeline(ctx, f.src, f.det, f.out, runOptions{}, discardLogger())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Frames)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestOpenSink(t *testing.T) {
	out, err := openSink("jsonl", "", discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &sink.JSONLSink{}, out)

	path := filepath.Join(t.TempDir(), "records.jsonl")
	out, err = openSink("jsonl", path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, out.Close())
	assert.FileExists(t, path)

	_, err = openSink("carrier-pigeon", "", discardLogger())
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	require.NoError(t, writeConfig([]string{base}, discardLogger()))

	cfg, err := loadConfig(base)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	// Starting from an edited file keeps the edits.
	cfg.ThresholdMargin = 45
	require.NoError(t, cfg.Save(base))
	derived := filepath.Join(dir, "derived.json")
	require.NoError(t, writeConfig([]string{"-config", base, derived}, discardLogger()))
	cfg, err = loadConfig(derived)
	require.NoError(t, err)
	assert.Equal(t, 45.0, cfg.ThresholdMargin)

	assert.Error(t, writeConfig(nil, discardLogger()))
}

func TestRun_RequiresSource(t *testing.T) {
	err := run(context.Background(), nil, discardLogger())
	assert.ErrorContains(t, err, "no frame source")
}
