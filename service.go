package pics2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/alnah/go-pics2pdf/internal/fileutil"
)

// Service orchestrates the page-to-PDF pipeline.
type Service struct {
	cfg          serviceConfig
	renderer     pageRenderer
	fetcher      imageFetcher
	newAssembler func() documentAssembler
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithNavigationTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			navTimeout: DefaultNavigationTimeout,
			userAgent:  defaultUserAgent,
			logger:     slog.Default(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create real collaborators if not injected (e.g., by tests)
	if s.renderer == nil {
		s.renderer = newRodRenderer(s.cfg.navTimeout)
	}
	if s.fetcher == nil {
		s.fetcher = newHTTPFetcher(s.cfg.userAgent)
	}
	if s.newAssembler == nil {
		s.newAssembler = newFpdfAssembler
	}

	return s
}

// Generate runs the full pipeline: render the page, fetch every
// eligible image concurrently, and assemble one page per image in DOM
// order. On success the caller owns the Result and must call Cleanup
// after delivering the PDF; on failure all temp artifacts are already
// removed.
func (s *Service) Generate(ctx context.Context, input Input) (*Result, error) {
	if input.URL == "" {
		return nil, ErrEmptyURL
	}

	srcs, err := s.renderer.ImageSources(ctx, input.URL)
	if err != nil {
		return nil, err
	}

	res := &Result{logger: s.cfg.logger}

	var candidates []*imageCandidate
	for i, src := range srcs {
		if !eligible(src) {
			s.cfg.logger.Info("skipping unsupported image source",
				"src", truncateRef(src), "ordinal", i)
			res.Skipped++
			continue
		}
		candidates = append(candidates, &imageCandidate{sourceRef: src, ordinal: i})
	}

	survivors := s.fetchAll(ctx, candidates, res)
	if len(survivors) == 0 {
		res.Cleanup()
		return nil, ErrNoImages
	}

	// Completion order is a race; page order is DOM order.
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].ordinal < survivors[j].ordinal
	})

	asm := s.newAssembler()
	pages := 0
	for _, c := range survivors {
		if err := asm.AddPage(float64(c.width), float64(c.height), c.path); err != nil {
			s.cfg.logger.Warn("dropping image page",
				"src", c.sourceRef, "error", err)
			res.Failed++
			continue
		}
		pages++
	}
	if pages == 0 {
		res.Cleanup()
		return nil, ErrNoImages
	}

	out, err := os.CreateTemp("", "pics2pdf-*.pdf")
	if err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	res.track(out.Name())
	res.PDFPath = out.Name()

	if err := s.finalize(asm, out); err != nil {
		res.Cleanup()
		return nil, err
	}

	res.PageCount = pages
	return res, nil
}

// finalize writes the document and syncs it to storage so delivery
// never races a partially flushed file.
func (s *Service) finalize(asm documentAssembler, out *os.File) error {
	if err := asm.Finalize(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: syncing output: %v", ErrFinalize, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: closing output: %v", ErrFinalize, err)
	}
	return nil
}

// fetchAll downloads and normalizes every candidate concurrently and
// joins before returning. Per-image failures are logged and dropped;
// they never abort the run.
func (s *Service) fetchAll(ctx context.Context, candidates []*imageCandidate, res *Result) []*imageCandidate {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		survivors []*imageCandidate
	)

	for _, c := range candidates {
		wg.Add(1)
		go func(c *imageCandidate) {
			defer wg.Done()

			path, width, height, err := s.fetchOne(ctx, c)
			if err != nil {
				s.cfg.logger.Warn("dropping image",
					"src", c.sourceRef, "ordinal", c.ordinal, "error", err)
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return
			}

			c.path, c.width, c.height = path, width, height
			mu.Lock()
			survivors = append(survivors, c)
			res.track(path)
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return survivors
}

// fetchOne retrieves a single candidate, transcodes WebP to JPEG,
// persists the normalized bytes to a uniquely named temp file, and
// decodes the pixel dimensions.
func (s *Service) fetchOne(ctx context.Context, c *imageCandidate) (path string, width, height int, err error) {
	data, err := s.fetcher.Fetch(ctx, c.sourceRef)
	if err != nil {
		return "", 0, 0, err
	}

	if isWebP(c.sourceRef) {
		data, err = transcodeWebPToJPEG(data)
		if err != nil {
			return "", 0, 0, err
		}
	}

	width, height, err = decodeDimensions(data)
	if err != nil {
		return "", 0, 0, err
	}

	path, err = fileutil.WriteTempImage(data)
	if err != nil {
		return "", 0, 0, err
	}
	return path, width, height, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}
