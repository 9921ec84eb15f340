package usecase

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/entity"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/domain/port"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/csvmeta"
	"github.com/MundaneSoftware/e57-Image-Extractor/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultTargetWidth  = 8192
	DefaultTargetHeight = 4096
)

// ExtractBatchUseCase runs the batch extraction pipeline: for every
// capture file, in order, extract each scan's panoramic image and pose,
// resize, write the image, and append a metadata row. Per-file and
// per-scan failures are collected as data and never abort the batch; the
// only fatal error after startup is a failed final metadata save.
type ExtractBatchUseCase struct {
	reader    port.CaptureReader
	processor port.ImageProcessor
	metadata  port.MetadataWriter
	bundler   port.Bundler
	progress  port.ProgressSink
	logger    *zap.Logger
}

func NewExtractBatchUseCase(
	reader port.CaptureReader,
	processor port.ImageProcessor,
	metadata port.MetadataWriter,
	bundler port.Bundler,
	progress port.ProgressSink,
	logger *zap.Logger,
) *ExtractBatchUseCase {
	return &ExtractBatchUseCase{
		reader:    reader,
		processor: processor,
		metadata:  metadata,
		bundler:   bundler,
		progress:  progress,
		logger:    logger,
	}
}

// Request describes one batch run. OutputDir is fixed for the whole run
// and never derived from input file locations.
type Request struct {
	Files        []string
	OutputDir    string
	TargetWidth  int
	TargetHeight int
	BundlePath   string
}

// Execute processes the batch sequentially. Cancellation is cooperative,
// checked once per scan; rows accumulated before the checkpoint are still
// persisted.
func (uc *ExtractBatchUseCase) Execute(ctx context.Context, req Request) (*entity.RunReport, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ExtractBatchUseCase.Execute")
	defer span.End()

	if req.TargetWidth <= 0 {
		req.TargetWidth = DefaultTargetWidth
	}
	if req.TargetHeight <= 0 {
		req.TargetHeight = DefaultTargetHeight
	}

	report := entity.NewRunReport(len(req.Files))
	span.SetAttributes(
		attribute.String("run.id", report.RunID.String()),
		attribute.Int("run.files", len(req.Files)),
	)

	log := uc.logger.With(zap.String("run_id", report.RunID.String()))
	totalTimer := time.Now()

	uc.emit(entity.ProgressEvent{
		Phase:      entity.PhaseStarted,
		FilesTotal: len(req.Files),
	})

	if len(req.Files) == 0 {
		report.Finish(false)
		uc.emit(entity.ProgressEvent{Phase: entity.PhaseCompleted, Status: report.Status})
		log.Info("empty batch, nothing to do")
		return report, nil
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		uc.recordItemError(report, req.OutputDir, entity.NoScan, entity.ErrorKindWrite, "create output dir: "+err.Error())
		report.Finish(false)
		return report, fmt.Errorf("create output dir: %w", err)
	}

	var (
		imagePaths []string
		cancelled  bool
	)

	for fileIdx, path := range req.Files {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		capture := entity.NewCaptureFile(path)
		fileLog := log.With(zap.String("file", capture.DisplayName()))

		if !capture.HasCaptureExtension() {
			fileLog.Warn("skipping input without .e57 extension", zap.String("path", path))
			continue
		}

		uc.emit(entity.ProgressEvent{
			Phase:          entity.PhaseFileBegin,
			File:           capture.DisplayName(),
			FilesProcessed: fileIdx,
			FilesTotal:     len(req.Files),
		})

		written, fileCancelled := uc.processFile(ctx, capture, req, report, fileIdx, fileLog)
		imagePaths = append(imagePaths, written...)
		if fileCancelled {
			cancelled = true
			break
		}

		uc.emit(entity.ProgressEvent{
			Phase:          entity.PhaseFileDone,
			File:           capture.DisplayName(),
			FilesProcessed: fileIdx + 1,
			FilesTotal:     len(req.Files),
		})
	}

	csvPath, err := uc.persistMetadata(req, report, cancelled, log)
	if err != nil {
		uc.recordItemError(report, csvmeta.FileName, entity.NoScan, entity.ErrorKindWrite, err.Error())
		report.Finish(cancelled)
		return report, err
	}

	if req.BundlePath != "" && uc.bundler != nil && len(imagePaths) > 0 {
		if cancelled {
			// No bundle from a partial run; the skip is still recorded.
			log.Info("bundle skipped, run cancelled", zap.String("bundle", req.BundlePath))
			uc.recordItemError(report, req.BundlePath, entity.NoScan, entity.ErrorKindCancelled, "bundle skipped: run cancelled")
		} else {
			bundleFiles := imagePaths
			if csvPath != "" {
				bundleFiles = append(bundleFiles, csvPath)
			}
			if err := uc.bundler.CreateBundle(ctx, bundleFiles, req.BundlePath); err != nil {
				log.Error("bundle creation failed", zap.String("bundle", req.BundlePath), zap.Error(err))
				uc.recordItemError(report, req.BundlePath, entity.NoScan, entity.ErrorKindWrite, "create bundle: "+err.Error())
			}
		}
	}

	report.Finish(cancelled)
	metrics.RunsTotal.WithLabelValues(string(report.Status)).Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	terminalPhase := entity.PhaseCompleted
	if cancelled {
		terminalPhase = entity.PhaseCancelled
	}
	uc.emit(entity.ProgressEvent{
		Phase:          terminalPhase,
		FilesProcessed: report.FilesOpened,
		FilesTotal:     report.FilesTotal,
		Status:         report.Status,
	})

	log.Info("batch finished",
		zap.String("status", string(report.Status)),
		zap.Int("scans_attempted", report.ScansAttempted),
		zap.Int("scans_succeeded", report.ScansSucceeded),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("elapsed", report.Elapsed()),
	)

	return report, nil
}

// processFile extracts every scan of one capture file. Returns the paths
// of images written and whether cancellation was observed mid-file.
func (uc *ExtractBatchUseCase) processFile(
	ctx context.Context,
	capture entity.CaptureFile,
	req Request,
	report *entity.RunReport,
	fileIdx int,
	log *zap.Logger,
) ([]string, bool) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "process_capture_file")
	span.SetAttributes(attribute.String("capture.file", capture.DisplayName()))
	defer span.End()

	openTimer := time.Now()
	c, err := uc.reader.Open(ctx, capture.Path)
	if err != nil {
		log.Error("failed to open capture file", zap.Error(err))
		uc.recordItemError(report, capture.DisplayName(), entity.NoScan, entity.ErrorKindFileOpen, "open capture: "+err.Error())
		return nil, false
	}
	defer c.Close()
	metrics.StageDuration.WithLabelValues("open").Observe(time.Since(openTimer).Seconds())

	report.FilesOpened++
	scanCount := c.ScanCount()
	log.Info("capture file opened", zap.Int("scan_count", scanCount))

	var written []string
	for i := 0; i < scanCount; i++ {
		// Cancellation checkpoint, once per scan.
		if ctx.Err() != nil {
			return written, true
		}

		path, ok := uc.processScan(ctx, c, capture, i, req, report, fileIdx, log)
		if ok {
			written = append(written, path)
		}
	}

	return written, false
}

// processScan handles one scan end to end: fetch, decode, resize, write,
// append row. A scan without an image payload is skipped silently.
func (uc *ExtractBatchUseCase) processScan(
	ctx context.Context,
	c port.Capture,
	capture entity.CaptureFile,
	index int,
	req Request,
	report *entity.RunReport,
	fileIdx int,
	log *zap.Logger,
) (string, bool) {
	scan, err := c.Scan(ctx, index)
	if err != nil {
		log.Warn("failed to read scan", zap.Int("scan", index), zap.Error(err))
		uc.recordItemError(report, capture.DisplayName(), index, entity.ErrorKindDecode, "read scan: "+err.Error())
		return "", false
	}

	if scan.Image == nil {
		log.Debug("scan has no panoramic image, skipping", zap.Int("scan", index))
		return "", false
	}

	report.ScansAttempted++

	decodeTimer := time.Now()
	img, err := uc.processor.Decode(scan.Image)
	if err != nil {
		log.Warn("image decode failed", zap.Int("scan", index), zap.Error(err))
		uc.recordItemError(report, capture.DisplayName(), index, entity.ErrorKindDecode, "decode: "+err.Error())
		return "", false
	}
	metrics.StageDuration.WithLabelValues("decode").Observe(time.Since(decodeTimer).Seconds())

	resizeTimer := time.Now()
	resized, err := uc.processor.Resize(img, req.TargetWidth, req.TargetHeight)
	if err != nil {
		log.Warn("image resize failed", zap.Int("scan", index), zap.Error(err))
		uc.recordItemError(report, capture.DisplayName(), index, entity.ErrorKindResize, "resize: "+err.Error())
		return "", false
	}
	metrics.StageDuration.WithLabelValues("resize").Observe(time.Since(resizeTimer).Seconds())

	fileName := capture.ImageFileName(index)
	fullPath := filepath.Join(req.OutputDir, fileName)

	writeTimer := time.Now()
	if err := uc.writeImage(fullPath, resized); err != nil {
		log.Warn("image write failed", zap.Int("scan", index), zap.Error(err))
		uc.recordItemError(report, capture.DisplayName(), index, entity.ErrorKindWrite, "write image: "+err.Error())
		return "", false
	}
	metrics.StageDuration.WithLabelValues("write").Observe(time.Since(writeTimer).Seconds())

	if info, err := os.Stat(fullPath); err == nil {
		metrics.ImageBytesWritten.Add(float64(info.Size()))
	}

	report.Table.Append(entity.MetadataRow{
		ImageFileName: fileName,
		ImagePath:     fullPath,
		Pose:          scan.Pose,
	})
	report.ScansSucceeded++
	metrics.ScansProcessedTotal.Inc()

	uc.emit(entity.ProgressEvent{
		Phase:          entity.PhaseScanDone,
		File:           capture.DisplayName(),
		ScanIndex:      index,
		FilesProcessed: fileIdx,
		FilesTotal:     report.FilesTotal,
	})

	return fullPath, true
}

func (uc *ExtractBatchUseCase) writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	if err := uc.processor.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close image file: %w", err)
	}
	return nil
}

// persistMetadata saves coords.csv once at the end of the run, including
// the cancellation path. Nothing is written when no file could be opened
// (or the batch was empty), so an all-failed run leaves no table behind.
// A failed save is the one fatal error of the pipeline.
func (uc *ExtractBatchUseCase) persistMetadata(
	req Request,
	report *entity.RunReport,
	cancelled bool,
	log *zap.Logger,
) (string, error) {
	if report.FilesOpened == 0 {
		return "", nil
	}

	saveTimer := time.Now()
	csvPath := filepath.Join(req.OutputDir, csvmeta.FileName)
	if err := uc.metadata.Save(csvPath, report.Table); err != nil {
		log.Error("failed to persist metadata table", zap.Error(err))
		return "", fmt.Errorf("save metadata table: %w", err)
	}
	metrics.StageDuration.WithLabelValues("save").Observe(time.Since(saveTimer).Seconds())

	log.Info("metadata table persisted",
		zap.String("path", csvPath),
		zap.Int("rows", report.Table.Len()),
		zap.Bool("cancelled", cancelled),
	)
	return csvPath, nil
}

func (uc *ExtractBatchUseCase) recordItemError(
	report *entity.RunReport,
	file string,
	scanIndex int,
	kind entity.ErrorKind,
	msg string,
) {
	report.RecordError(file, scanIndex, kind, msg)
	metrics.ScanFailuresTotal.WithLabelValues(string(kind)).Inc()

	item := report.Errors[len(report.Errors)-1]
	uc.emit(entity.ProgressEvent{
		Phase:     entity.PhaseError,
		File:      file,
		ScanIndex: scanIndex,
		Error:     &item,
	})
}

// emit publishes a progress event. The sink is best-effort: a nil sink
// is ignored and a panicking sink cannot abort the run.
func (uc *ExtractBatchUseCase) emit(event entity.ProgressEvent) {
	if uc.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Warn("progress sink panicked", zap.Any("panic", r))
		}
	}()
	uc.progress.Publish(event)
}
