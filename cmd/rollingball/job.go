package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/background"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/config"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/images"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/profiler"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/util"
)

const (
	backgroundSuffix = "_background"
	previewSuffix    = "_preview"
)

// Job processes a set of images with one configuration.
type Job struct {
	cfg       config.Config
	logger    logrus.FieldLogger
	profiler  *profiler.Profiler
	processor *background.Processor
}

// Summary counts the outcome of a run.
type Summary struct {
	Processed int
	Failed    int
}

// NewJob creates a job. prof may be nil.
func NewJob(cfg config.Config, logger logrus.FieldLogger, prof *profiler.Profiler) *Job {
	if prof == nil {
		prof = profiler.New(nil, profiler.Options{})
	}
	return &Job{
		cfg:       cfg,
		logger:    logger,
		profiler:  prof,
		processor: background.NewProcessor(logger),
	}
}

// Run processes every image named by paths. Directories contribute their
// supported files. A failing image is logged and counted but does not stop
// the others; Run then returns an error naming how many failed. Cancelling
// ctx stops scheduling new images.
func (j *Job) Run(ctx context.Context, paths []string) (Summary, error) {
	inputs, err := j.expand(paths)
	if err != nil {
		return Summary{}, err
	}
	if len(inputs) == 0 {
		return Summary{}, errors.New("no supported images found")
	}
	if j.cfg.OutputDir != "" {
		if err := os.MkdirAll(j.cfg.OutputDir, 0o755); err != nil {
			return Summary{}, errors.Wrap(err, "failed to create output directory")
		}
	}

	var processed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.Workers)
	for _, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		in := in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := j.logger.WithField("input", in)
			if err := j.processFile(in, log); err != nil {
				failed.Add(1)
				log.WithError(err).Error("Failed to process image")
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := Summary{Processed: int(processed.Load()), Failed: int(failed.Load())}
	if err != nil {
		return summary, errors.Wrap(err, "run interrupted")
	}
	if summary.Failed > 0 {
		return summary, errors.Errorf("%d of %d images failed", summary.Failed, len(inputs))
	}
	return summary, nil
}

// expand turns the command line into a list of image files.
func (j *Job) expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "failed to stat input")
		}
		if !info.IsDir() {
			if !images.IsSupported(p) {
				return nil, errors.Wrapf(images.ErrUnknownFormat, "input %s", p)
			}
			out = append(out, p)
			continue
		}
		files, err := util.LoadDirectoryImageFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if j.isOutput(f.Path) {
				continue
			}
			out = append(out, f.Path)
		}
	}
	return out, nil
}

// isOutput reports whether path looks like a file an earlier run wrote next
// to its input, so re-running over a directory does not process results.
func (j *Job) isOutput(path string) bool {
	if j.cfg.OutputDir != "" {
		return false
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, s := range []string{j.cfg.Suffix, backgroundSuffix, previewSuffix} {
		if s != "" && strings.HasSuffix(stem, s) {
			return true
		}
	}
	return false
}

// processFile runs the whole pipeline on one file and writes its outputs.
func (j *Job) processFile(path string, log logrus.FieldLogger) error {
	defer j.profiler.StartOperation("image")()

	img, _, err := images.ReadGray(path, j.cfg.ConvertColour)
	if err != nil {
		return err
	}

	done := j.profiler.StartOperation("background")
	res, err := j.processor.Process(img, j.cfg.Background)
	done()
	if err != nil {
		return err
	}

	corrected, err := j.outputPath(path, j.cfg.Suffix)
	if err != nil {
		return err
	}
	if err := images.WriteFile(corrected, res.Corrected); err != nil {
		return err
	}

	if j.cfg.WriteBackground {
		bgPath, err := j.outputPath(path, backgroundSuffix)
		if err != nil {
			return err
		}
		if err := images.WriteFile(bgPath, res.Background); err != nil {
			return err
		}
	}

	if j.cfg.PreviewWidth > 0 {
		strip, err := images.Preview(j.cfg.PreviewWidth, img, res.Background, res.Corrected)
		if err != nil {
			return err
		}
		prevPath, err := j.outputPath(path, previewSuffix)
		if err != nil {
			return err
		}
		if err := images.WriteFile(prevPath, strip); err != nil {
			return err
		}
	}

	j.profiler.RecordMetric("background_mean", res.Stats.Mean)
	j.profiler.RecordMetric("background_stddev", res.Stats.StdDev)
	j.profiler.RecordMetric("megapixels", float64(img.Rect.Dx()*img.Rect.Dy())/1e6)

	log.WithFields(logrus.Fields{
		"output":     corrected,
		"background": res.Stats.String(),
	}).Info("Processed image")
	return nil
}

// outputPath names an output for input: same stem plus suffix, in OutputDir
// when set, with the configured format's extension or the input's.
func (j *Job) outputPath(input, suffix string) (string, error) {
	ext := filepath.Ext(input)
	if j.cfg.Format != "" {
		ext = "." + j.cfg.Format
	}
	dir := filepath.Dir(input)
	if j.cfg.OutputDir != "" {
		dir = j.cfg.OutputDir
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	out := filepath.Join(dir, stem+suffix+ext)

	if same, err := samePath(out, input); err != nil {
		return "", err
	} else if same {
		return "", errors.Errorf("output %s would overwrite its input", out)
	}
	return out, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, errors.Wrap(err, "failed to resolve output path")
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, errors.Wrap(err, "failed to resolve input path")
	}
	return absA == absB, nil
}
