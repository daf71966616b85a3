// Command rollingball subtracts a rolling-ball background from greyscale
// images.
//
// Usage:
//
//	rollingball [flags] <image or directory>...
//
// Directories are processed non-recursively. Flags override the job file
// given with -config.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/config"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/profiler"
)

func main() {
	var (
		configFile     = flag.String("config", "", "Path to a YAML job file")
		radius         = flag.Float64("radius", 0, "Ball radius in pixels (default from job file, else 50)")
		light          = flag.Bool("light", false, "Light background with dark objects")
		presmooth      = flag.Bool("presmooth", true, "Apply a 3x3 maximum before rolling")
		paraboloid     = flag.Bool("paraboloid", false, "Use a paraboloid instead of a sphere")
		parallel       = flag.Bool("parallel", true, "Split every pass across CPUs")
		outputDir      = flag.String("output-dir", "", "Directory for output files (default: next to input)")
		suffix         = flag.String("suffix", "", "Suffix for corrected files (default _corrected)")
		format         = flag.String("format", "", "Output format: png, jpeg, tiff or bmp (default: input format)")
		workers        = flag.Int("workers", 0, "Images processed at once (default: CPU count)")
		writeBg        = flag.Bool("background", false, "Also write the background image")
		previewWidth   = flag.Int("preview", 0, "Write a side-by-side preview this wide (0 disables)")
		convert        = flag.Bool("convert", false, "Convert colour images to greyscale instead of failing")
		logLevel       = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat      = flag.String("log-format", "text", "Log format: text or json")
		reportInterval = flag.Duration("report-interval", 0, "Log batch statistics at this interval (0 disables)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image or directory>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load config")
		}
	}

	// Only flags given on the command line override the job file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "radius":
			cfg.Background.Radius = *radius
		case "light":
			cfg.Background.LightBackground = *light
		case "presmooth":
			cfg.Background.Presmooth = *presmooth
		case "paraboloid":
			cfg.Background.Paraboloid = *paraboloid
		case "parallel":
			cfg.Background.Parallel = *parallel
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "suffix":
			cfg.Suffix = *suffix
		case "format":
			cfg.Format = *format
		case "workers":
			cfg.Workers = *workers
		case "background":
			cfg.WriteBackground = *writeBg
		case "preview":
			cfg.PreviewWidth = *previewWidth
		case "convert":
			cfg.ConvertColour = *convert
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	prof := profiler.New(logger, profiler.Options{ReportInterval: *reportInterval})
	if *reportInterval > 0 {
		prof.Start(ctx)
	}

	start := time.Now()
	job := NewJob(cfg, logger, prof)
	summary, err := job.Run(ctx, flag.Args())
	prof.Stop()
	prof.Report()

	fields := logrus.Fields{
		"processed": summary.Processed,
		"failed":    summary.Failed,
		"elapsed":   time.Since(start).Truncate(time.Millisecond),
	}
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Run failed")
		os.Exit(1)
	}
	logger.WithFields(fields).Info("Done")
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	return logger, nil
}
