package bot

import (
	"context"
	"errors"
	"log/slog"

	pics2pdf "github.com/alnah/go-pics2pdf"
)

// Pipeline failure notices.
const (
	msgLoadFailed     = "Sorry, the page could not be loaded. Please check the URL and try again."
	msgNoImages       = "No supported images were found on that page."
	msgGenerateFailed = "Sorry, something went wrong while generating the PDF. Please try again."
	msgSendFailed     = "Sorry, there was an error sending the PDF. Please try again."
)

// generateFunc produces a document for one request. Indirect so tests
// can run the runner without a browser or a pool.
type generateFunc func(ctx context.Context, input pics2pdf.Input) (*pics2pdf.Result, error)

// PipelineRunner executes one generation run end to end: acquire a
// pooled service, generate, deliver, clean up. It never propagates a
// failure past its boundary; every path either delivers a document or
// sends a user-visible notice.
type PipelineRunner struct {
	generate generateFunc
	gw       Gateway
	logger   *slog.Logger
}

// NewPipelineRunner binds the runner to a service pool and a gateway.
func NewPipelineRunner(pool *pics2pdf.ServicePool, gw Gateway, logger *slog.Logger) *PipelineRunner {
	return &PipelineRunner{
		generate: func(ctx context.Context, input pics2pdf.Input) (*pics2pdf.Result, error) {
			svc := pool.Acquire()
			defer pool.Release(svc)
			return svc.Generate(ctx, input)
		},
		gw:     gw,
		logger: logger,
	}
}

// Run generates the document for url and delivers it to the user as
// "<outputName>.pdf". Temporary artifacts are removed on every path.
func (r *PipelineRunner) Run(ctx context.Context, userID, url, outputName string) {
	if outputName == "" {
		outputName = pics2pdf.DefaultOutputName
	}

	res, err := r.generate(ctx, pics2pdf.Input{URL: url, OutputName: outputName})
	if err != nil {
		r.logger.Warn("document generation failed", "user", userID, "url", url, "error", err)
		switch {
		case errors.Is(err, pics2pdf.ErrNoImages):
			r.notify(ctx, userID, msgNoImages)
		case errors.Is(err, pics2pdf.ErrNavigation):
			r.notify(ctx, userID, msgLoadFailed)
		default:
			r.notify(ctx, userID, msgGenerateFailed)
		}
		return
	}
	defer res.Cleanup()

	r.logger.Info("document generated",
		"user", userID, "pages", res.PageCount,
		"skipped", res.Skipped, "failed", res.Failed)

	if err := r.gw.SendDocument(ctx, userID, outputName+".pdf", res.PDFPath); err != nil {
		r.logger.Error("failed to deliver document", "user", userID, "error", err)
		r.notify(ctx, userID, msgSendFailed)
	}
}

// notify sends a failure notice, logging if even that fails.
func (r *PipelineRunner) notify(ctx context.Context, userID, text string) {
	if err := r.gw.SendText(ctx, userID, text); err != nil {
		r.logger.Error("failed to send notice", "user", userID, "error", err)
	}
}
