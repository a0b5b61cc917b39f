package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"variant-image-extractor/adapters"
	"variant-image-extractor/internal/types"
	"variant-image-extractor/utils"
)

// Saver is the download collaborator
type Saver interface {
	Save(ctx context.Context, task types.DownloadTask) (types.DownloadStatus, error)
}

// TackleWarehouseExtractor downloads one image per color variant for every
// product linked from the configured category page.
type TackleWarehouseExtractor struct {
	adapter *adapters.TackleWarehouseAdapter
	saver   Saver
	config  *types.Config
	logger  types.Logger
	runID   string
}

// NewTackleWarehouseExtractor creates a new extractor driving session
func NewTackleWarehouseExtractor(config *types.Config, logger types.Logger, session types.Session, saver Saver) *TackleWarehouseExtractor {
	runID := uuid.NewString()
	logger = withRunID(logger, runID)
	return &TackleWarehouseExtractor{
		adapter: adapters.NewTackleWarehouseAdapter(config, logger, session),
		saver:   saver,
		config:  config,
		logger:  logger,
		runID:   runID,
	}
}

func withRunID(logger types.Logger, runID string) types.Logger {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.WithField("run", runID)
	case *logrus.Entry:
		return l.WithField("run", runID)
	}
	return logger
}

// ExtractAll collects the category's product links and processes each one.
// Only a failure to read the category page is returned as an error.
func (t *TackleWarehouseExtractor) ExtractAll(ctx context.Context) (*types.RunSummary, error) {
	startTime := time.Now()
	t.logger.Infof("Starting %s extraction at %v", t.adapter.GetStoreName(), startTime.Format("15:04:05.000"))

	productURLs, err := t.adapter.GetProductURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get product URLs: %w", err)
	}

	summary := &types.RunSummary{RunID: t.runID}
	for i, productURL := range productURLs {
		if ctx.Err() != nil {
			t.logger.Warnf("Stopping after %d/%d products: %v", i, len(productURLs), ctx.Err())
			break
		}
		t.logger.Debugf("Processing product %d/%d", i+1, len(productURLs))

		report := t.ExtractProduct(ctx, productURL)
		summary.Products++
		if report.Error != "" {
			summary.Abandoned++
		}
		summary.Downloaded += report.Downloaded
		summary.Skipped += report.Skipped
		summary.Failed += report.Failed
		summary.Reports = append(summary.Reports, report)
	}

	t.logger.Infof("Extraction completed in %v", time.Since(startTime))
	t.logger.Infof("Products: %d (abandoned %d), files downloaded: %d, skipped: %d, failed: %d",
		summary.Products, summary.Abandoned, summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, nil
}

// ExtractProduct runs title resolution, layout detection and the variant
// loop for one product page. Failures are recorded on the report.
func (t *TackleWarehouseExtractor) ExtractProduct(ctx context.Context, productURL string) types.ProductReport {
	report := types.ProductReport{ProductURL: productURL}
	t.logger.Infof("Scraping product: %s", productURL)

	if err := t.adapter.OpenProduct(ctx, productURL); err != nil {
		return t.abandon(&report, "open", err)
	}

	title, steps, err := t.adapter.ResolveTitle(ctx, productURL)
	report.Steps = append(report.Steps, steps...)
	if err != nil {
		return t.abandon(&report, "title", err)
	}
	report.Title = title
	t.logger.Infof("Product: %s", title)

	folder := filepath.Join(t.config.OutputDir, title)

	layout, steps := t.adapter.DetectLayout(ctx)
	report.Steps = append(report.Steps, steps...)
	report.Layout = layout

	if layout == types.LayoutNone {
		t.logger.Warn("  Could not find color selection mechanism.")
		return t.degraded(ctx, &report, folder)
	}

	count, err := t.adapter.CountVariants(ctx, layout)
	if err != nil {
		report.Steps.Skip("enumerate", err.Error())
		count = 0
	}
	t.logger.Infof("  Found %d colors (Layout: %s).", count, layout)

	if count == 0 {
		t.logger.Info("  No color options found, downloading main image...")
		return t.degraded(ctx, &report, folder)
	}

	for i := 0; i < count; i++ {
		outcome, present := t.adapter.ResolveVariant(ctx, layout, i)
		if !present {
			t.logger.Warnf("  Color %d disappeared from the page, stopping.", i)
			break
		}
		report.Variants = append(report.Variants, outcome)

		if outcome.Result == nil {
			t.logger.Warnf("  Error processing color %d: %s", i, failureReason(outcome.Steps))
			continue
		}

		filename := fmt.Sprintf("%s-%s%s", title, outcome.Result.ColorLabel, outcome.Result.Extension)
		t.save(ctx, &report, types.DownloadTask{
			URL:               outcome.Result.ImageURL,
			DestinationFolder: folder,
			Filename:          filename,
		})
	}

	return report
}

func (t *TackleWarehouseExtractor) degraded(ctx context.Context, report *types.ProductReport, folder string) types.ProductReport {
	report.Degraded = true

	imageURL, err := t.adapter.MainImage(ctx)
	if err != nil {
		return t.abandon(report, "main-image", err)
	}
	report.Steps.OK("main-image")

	t.save(ctx, report, types.DownloadTask{
		URL:               imageURL,
		DestinationFolder: folder,
		Filename:          report.Title + utils.ImageExtension(imageURL),
	})
	return *report
}

func (t *TackleWarehouseExtractor) save(ctx context.Context, report *types.ProductReport, task types.DownloadTask) {
	report.Tasks = append(report.Tasks, task)

	status, err := t.saver.Save(ctx, task)
	switch status {
	case types.Downloaded:
		report.Downloaded++
	case types.DownloadSkipped:
		report.Skipped++
	default:
		report.Failed++
		t.logger.Errorf("  %v", err)
	}
}

func (t *TackleWarehouseExtractor) abandon(report *types.ProductReport, step string, err error) types.ProductReport {
	report.Steps.Fail(step, err)
	report.Error = err.Error()

	switch {
	case errors.Is(err, types.ErrTitleUnresolved):
		t.logger.Error("  Could not find product title.")
	case errors.Is(err, types.ErrNoMainImage):
		t.logger.Error("  Could not find main image.")
	default:
		t.logger.Errorf("Error scraping product %s: %v", report.ProductURL, err)
	}
	return *report
}

func failureReason(steps types.Steps) string {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Status == types.StepFailed {
			return steps[i].Name + ": " + steps[i].Reason
		}
	}
	return "no result"
}

// RunID identifies this extractor's run in log entries and the summary
func (t *TackleWarehouseExtractor) RunID() string {
	return t.runID
}
