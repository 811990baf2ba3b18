package pics2pdf

import (
	"log/slog"
	"os"
	"time"
)

// DefaultOutputName is the base filename used when the caller does not
// pick one.
const DefaultOutputName = "images"

// DefaultNavigationTimeout bounds the initial page navigation. It does
// not apply to the image fetch fan-out.
const DefaultNavigationTimeout = 120 * time.Second

// defaultUserAgent is sent with every image fetch. Some hosts refuse
// requests without a browser-looking agent.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// Input contains generation parameters.
type Input struct {
	URL        string // page to render (required)
	OutputName string // base filename without extension (default: "images")
}

// Result describes one finished generation run. The PDF and the
// intermediate image files stay on disk until Cleanup is called, so the
// caller can deliver the document first.
type Result struct {
	PDFPath   string // finalized document artifact
	PageCount int    // pages in the document
	Skipped   int    // ineligible sources (data: URIs, unsupported formats)
	Failed    int    // eligible candidates dropped by fetch/decode failures

	tempFiles []string
	logger    *slog.Logger
}

// track registers a temporary artifact for later removal.
func (r *Result) track(path string) {
	r.tempFiles = append(r.tempFiles, path)
}

// Cleanup removes every temporary artifact created during generation,
// including the finalized PDF. Each removal is guarded independently so
// one failure does not block the others; failures are logged only.
// Cleanup is idempotent.
func (r *Result) Cleanup() {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range r.tempFiles {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove temp file", "path", p, "error", err)
		}
	}
	r.tempFiles = nil
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	navTimeout time.Duration
	userAgent  string
	logger     *slog.Logger
}

// WithNavigationTimeout sets the maximum wait for page navigation.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithNavigationTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pics2pdf: WithNavigationTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.navTimeout = d
	}
}

// WithUserAgent overrides the User-Agent header sent on image fetches.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		if ua != "" {
			s.cfg.userAgent = ua
		}
	}
}

// WithLogger sets the structured logger used for skips, per-image
// failures, and cleanup problems. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.cfg.logger = l
		}
	}
}
