package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/ironsheep/boat-detect/internal/config"
	"github.com/ironsheep/boat-detect/internal/detection"
	"github.com/ironsheep/boat-detect/internal/server"
	"github.com/ironsheep/boat-detect/internal/sink"
	"github.com/ironsheep/boat-detect/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("boat-detect %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	// Logs go to stderr; stdout carries records or the JSON-RPC protocol.
	logger := newLogger(os.Getenv("BOAT_DETECT_LOG_LEVEL"))
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case len(args) > 0 && args[0] == "serve":
		err = serve(ctx, args[1:], logger)
	case len(args) > 0 && args[0] == "config":
		err = writeConfig(args[1:], logger)
	default:
		if len(args) > 0 && args[0] == "run" {
			args = args[1:]
		}
		err = run(ctx, args, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("boat-detect - horizon-based boat detector")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  boat-detect [run] [options]    Analyse a frame stream and emit detection records")
	fmt.Println("  boat-detect serve [options]    Serve the analysis tools over stdin/stdout (MCP)")
	fmt.Println("  boat-detect config FILE        Write the effective configuration to FILE")
	fmt.Println()
	fmt.Println("Run options:")
	fmt.Println("  -config FILE      JSON configuration file")
	fmt.Println("  -source SPEC      Frame directory, video file or capture device index")
	fmt.Println("  -sink NAME        jsonl (default) or kafka")
	fmt.Println("  -out FILE         Write JSON lines to FILE instead of stdout")
	fmt.Println("  -features         Include the smoothed feature row in each record")
	fmt.Println("  -debug-dir DIR    Write per-frame debug images to DIR")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  BOAT_DETECT_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
	fmt.Println("  BOAT_DETECT_KAFKA_BOOTSTRAP_SERVERS Kafka brokers for -sink kafka")
	fmt.Println("  BOAT_DETECT_KAFKA_TOPIC             Kafka topic for -sink kafka")
}

// newLogger builds the JSON logger on stderr at the named level. Unknown
// names fall back to info.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// writeConfig saves the configuration a run would use, defaults filled in,
// so it can be edited and passed back with -config.
func writeConfig(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON configuration file to start from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("config: expected one output file")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Save(fs.Arg(0)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	logger.Info("config written", "path", fs.Arg(0))
	return nil
}

func run(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON configuration file")
	sourceSpec := fs.String("source", "", "frame directory, video file or device index")
	sinkName := fs.String("sink", "jsonl", "record sink: jsonl or kafka")
	outPath := fs.String("out", "", "JSON lines output file (default stdout)")
	features := fs.Bool("features", false, "include the smoothed feature row in records")
	debugDir := fs.String("debug-dir", "", "directory for per-frame debug images")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *sourceSpec != "" {
		cfg.VideoSource = *sourceSpec
	}
	if cfg.VideoSource == "" {
		return errors.New("no frame source: set -source or video_source in the config")
	}

	det, err := detection.New(cfg, logger)
	if err != nil {
		return err
	}

	src, err := source.Open(cfg.VideoSource, cfg.FrameWidth, cfg.FrameHeight, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := openSink(*sinkName, *outPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("failed to close sink", "error", err)
		}
		if ks, ok := out.(*sink.KafkaSink); ok {
			logger.Info("kafka sink closed", "metrics", ks.Metrics())
		}
	}()

	opts := runOptions{
		RunID:    uuid.NewString(),
		Features: *features,
		DebugDir: *debugDir,
	}
	logger.Info("run started",
		"run_id", opts.RunID,
		"source", cfg.VideoSource,
		"sink", *sinkName,
		"extractor", cfg.FeatureExtractor)

	stats, err := runPipeline(ctx, src, det, out, opts, logger)
	logger.Info("run finished",
		"run_id", opts.RunID,
		"frames", stats.Frames,
		"analyzed", stats.Analyzed,
		"skipped", stats.Skipped,
		"read_errors", stats.ReadErrors,
		"written", stats.Written)
	return err
}

func openSink(name, outPath string, logger *slog.Logger) (sink.Sink, error) {
	switch name {
	case "jsonl":
		if outPath == "" {
			return sink.NewJSONLSink(os.Stdout), nil
		}
		f, err := os.Create(outPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return &fileSink{JSONLSink: sink.NewJSONLSink(f), f: f}, nil
	case "kafka":
		ks, err := sink.NewKafkaSink(config.NewKafkaConfig(), logger)
		if err != nil {
			return nil, err
		}
		return ks, nil
	default:
		return nil, fmt.Errorf("unknown sink %q (want jsonl or kafka)", name)
	}
}

// fileSink closes its output file along with the sink.
type fileSink struct {
	*sink.JSONLSink
	f *os.File
}

func (s *fileSink) Close() error {
	return s.f.Close()
}

func serve(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger, server.WithVersion(Version))
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
