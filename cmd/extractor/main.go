package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/archive"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/config"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/csvmeta"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/e57"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/imaging"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/metrics"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/tracing"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/usecase"
	"github.com/MundaneSoftware/e57-Image-Extractor/pkg/logger"
	"github.com/cheggaaa/pb/v3"
	"go.uber.org/zap"
)

var (
	outDir       string
	sizeSpec     string
	jpegQuality  int
	bundlePath   string
	manifestPath string
	noProgress   bool
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	flag.StringVar(&outDir, "out", "", "output directory for images and coords.csv")
	flag.StringVar(&sizeSpec, "size", "", "target image size as WIDTHxHEIGHT (default 8192x4096)")
	flag.IntVar(&jpegQuality, "quality", cfg.JPEGQuality, "JPEG encode quality")
	flag.StringVar(&bundlePath, "bundle", "", "optional ZIP archive of the run outputs")
	flag.StringVar(&manifestPath, "manifest", "", "optional YAML batch manifest")
	flag.BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	flag.Parse()

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	req := usecase.Request{
		Files:        flag.Args(),
		OutputDir:    outDir,
		TargetWidth:  cfg.TargetWidth,
		TargetHeight: cfg.TargetHeight,
		BundlePath:   bundlePath,
	}
	quality := jpegQuality

	if manifestPath != "" {
		m, err := config.LoadManifest(manifestPath)
		fatalOnErr(err, "load manifest")
		applyManifest(&req, &quality, m)
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "quality" {
				quality = jpegQuality
			}
		})
	}
	if sizeSpec != "" {
		w, h, err := parseSize(sizeSpec)
		fatalOnErr(err, "parse -size")
		req.TargetWidth, req.TargetHeight = w, h
	}
	if outDir != "" {
		req.OutputDir = outDir
	}
	if bundlePath != "" {
		req.BundlePath = bundlePath
	}

	if len(req.Files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: extractor -out DIR [-size WxH] [-quality N] [-bundle out.zip] [-manifest run.yaml] file.e57...")
		os.Exit(2)
	}
	if req.OutputDir == "" {
		fmt.Fprintln(os.Stderr, "an output directory is required (-out or manifest output_dir)")
		os.Exit(2)
	}

	log.Info("starting e57 image extractor",
		zap.Int("files", len(req.Files)),
		zap.String("output_dir", req.OutputDir),
		zap.Int("target_width", req.TargetWidth),
		zap.Int("target_height", req.TargetHeight),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cooperative cancellation on Ctrl-C: the pipeline stops at the next
	// per-scan checkpoint and persists what it has.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, cancelling run", zap.String("signal", sig.String()))
		cancel()
	}()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	if cfg.MetricsPort > 0 {
		metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
	}

	sink := newChannelSink(cfg.ProgressBufferSize)
	rendererDone := make(chan struct{})
	go func() {
		defer close(rendererDone)
		renderProgress(sink.Events(), noProgress)
	}()

	uc := usecase.NewExtractBatchUseCase(
		e57.NewReader(cfg.ExportTool, cfg.TempDir, time.Duration(cfg.ExportTimeoutSecs)*time.Second, log),
		imaging.NewProcessor(quality),
		csvmeta.NewWriter(),
		archive.NewBundler(),
		sink,
		log,
	)

	report, err := uc.Execute(ctx, req)
	sink.Close()
	<-rendererDone
	if err != nil {
		log.Error("batch run failed", zap.Error(err))
		printSummary(report)
		os.Exit(1)
	}

	printSummary(report)

	switch report.Status {
	case entity.RunStatusAllFailed:
		os.Exit(1)
	case entity.RunStatusCancelled:
		os.Exit(130)
	}
}

func applyManifest(req *usecase.Request, quality *int, m *config.Manifest) {
	if len(m.Files) > 0 {
		req.Files = append(m.Files, req.Files...)
	}
	if m.OutputDir != "" {
		req.OutputDir = m.OutputDir
	}
	if m.TargetWidth > 0 {
		req.TargetWidth = m.TargetWidth
	}
	if m.TargetHeight > 0 {
		req.TargetHeight = m.TargetHeight
	}
	if m.JPEGQuality > 0 {
		*quality = m.JPEGQuality
	}
	if m.BundlePath != "" {
		req.BundlePath = m.BundlePath
	}
}

func parseSize(spec string) (int, int, error) {
	wStr, hStr, ok := strings.Cut(strings.ToLower(spec), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size must be WIDTHxHEIGHT, got %q", spec)
	}
	w, err := strconv.Atoi(wStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", wStr)
	}
	h, err := strconv.Atoi(hStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", hStr)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}

// renderProgress consumes pipeline events and drives a terminal progress
// bar, one tick per finished capture file.
func renderProgress(events <-chan entity.ProgressEvent, disabled bool) {
	var bar *pb.ProgressBar

	for ev := range events {
		switch ev.Phase {
		case entity.PhaseStarted:
			if !disabled && ev.FilesTotal > 0 {
				template := `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . }} {{etime . "%s elapsed"}}`
				bar = pb.ProgressBarTemplate(template).Start(ev.FilesTotal)
			}
		case entity.PhaseFileBegin:
			if bar != nil {
				bar.Set("prefix", ev.File)
			}
		case entity.PhaseScanDone:
			if bar != nil {
				bar.Set("prefix", fmt.Sprintf("%s scan %d", ev.File, ev.ScanIndex))
			}
		case entity.PhaseFileDone:
			if bar != nil {
				bar.Increment()
			}
		case entity.PhaseCompleted, entity.PhaseCancelled:
			if bar != nil {
				bar.Finish()
				bar = nil
			}
		}
	}

	if bar != nil {
		bar.Finish()
	}
}

func printSummary(report *entity.RunReport) {
	if report == nil {
		return
	}

	fmt.Printf("\nrun %s: %s in %s\n", report.RunID, report.Status, report.Elapsed().Round(time.Millisecond))
	fmt.Printf("  files: %d total, %d opened\n", report.FilesTotal, report.FilesOpened)
	fmt.Printf("  scans: %d attempted, %d succeeded, %d rows written\n",
		report.ScansAttempted, report.ScansSucceeded, report.Table.Len())

	if len(report.Errors) > 0 {
		fmt.Printf("  failures (%d):\n", len(report.Errors))
		for _, item := range report.Errors {
			if item.ScanIndex == entity.NoScan {
				fmt.Printf("    %s: %s: %s\n", item.File, item.Kind, item.Message)
			} else {
				fmt.Printf("    %s scan %d: %s: %s\n", item.File, item.ScanIndex, item.Kind, item.Message)
			}
		}
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
