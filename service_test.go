package pics2pdf

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"
)

// Mock implementations for testing.

type mockRenderer struct {
	srcs   []string
	err    error
	closed bool
}

func (m *mockRenderer) ImageSources(_ context.Context, _ string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.srcs, nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

type mockFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	delays    map[string]time.Duration
	calls     []string
}

func (m *mockFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ref)
	delay := m.delays[ref]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err := m.errs[ref]; err != nil {
		return nil, err
	}
	data, ok := m.responses[ref]
	if !ok {
		return nil, errors.New("unexpected fetch: " + ref)
	}
	return data, nil
}

func (m *mockFetcher) fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type addedPage struct {
	width  float64
	height float64
	path   string
}

type mockAssembler struct {
	pages     []addedPage
	finalized bool
}

func (m *mockAssembler) AddPage(width, height float64, jpegPath string) error {
	m.pages = append(m.pages, addedPage{width: width, height: height, path: jpegPath})
	return nil
}

func (m *mockAssembler) Finalize(w io.Writer) error {
	m.finalized = true
	_, err := w.Write([]byte("%PDF-1.4 mock"))
	return err
}

// rejectWideAssembler fails AddPage above a width threshold, simulating
// a per-page assembly failure.
type rejectWideAssembler struct {
	inner    documentAssembler
	maxWidth float64
}

func (r *rejectWideAssembler) AddPage(width, height float64, jpegPath string) error {
	if width > r.maxWidth {
		return errors.New("too wide")
	}
	return r.inner.AddPage(width, height, jpegPath)
}

func (r *rejectWideAssembler) Finalize(w io.Writer) error {
	return r.inner.Finalize(w)
}

// Test options for dependency injection (not exported).

func withRenderer(r pageRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

func withFetcher(f imageFetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

func withAssembler(fn func() documentAssembler) Option {
	return func(s *Service) {
		s.newAssembler = fn
	}
}

func TestGenerate_EmptyURL(t *testing.T) {
	t.Parallel()

	svc := New(withRenderer(&mockRenderer{}))
	if _, err := svc.Generate(context.Background(), Input{}); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("Generate() error = %v, want ErrEmptyURL", err)
	}
}

func TestGenerate_NavigationError(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{err: ErrNavigation}
	svc := New(withRenderer(renderer), withFetcher(&mockFetcher{}))

	_, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if !errors.Is(err, ErrNavigation) {
		t.Errorf("Generate() error = %v, want ErrNavigation", err)
	}
}

func TestGenerate_FiltersIneligibleSources(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{srcs: []string{
		"data:image/png;base64,AAAA",
		"https://example.com/skip.png",
		"https://example.com/keep.jpg",
		"https://example.com/SKIP.JPG",
	}}
	fetcher := &mockFetcher{responses: map[string][]byte{
		"https://example.com/keep.jpg": encodeJPEG(t, 8, 8),
	}}
	asm := &mockAssembler{}
	svc := New(withRenderer(renderer), withFetcher(fetcher),
		withAssembler(func() documentAssembler { return asm }))

	res, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	defer res.Cleanup()

	if got := fetcher.fetched(); len(got) != 1 || got[0] != "https://example.com/keep.jpg" {
		t.Errorf("fetched %v, want only keep.jpg", got)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", res.Skipped)
	}
	if res.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", res.PageCount)
	}
}

func TestGenerate_PageOrderFollowsDOMOrder(t *testing.T) {
	t.Parallel()

	// Five images whose widths encode their DOM position. Fetch delays
	// are inverted so completion order is the reverse of DOM order.
	srcs := []string{
		"https://example.com/0.jpg",
		"https://example.com/1.jpg",
		"https://example.com/2.jpg",
		"https://example.com/3.jpg",
		"https://example.com/4.jpg",
	}
	fetcher := &mockFetcher{
		responses: make(map[string][]byte),
		delays:    make(map[string]time.Duration),
	}
	for i, src := range srcs {
		fetcher.responses[src] = encodeJPEG(t, 10+i, 5)
		fetcher.delays[src] = time.Duration(len(srcs)-i) * 20 * time.Millisecond
	}

	asm := &mockAssembler{}
	svc := New(withRenderer(&mockRenderer{srcs: srcs}), withFetcher(fetcher),
		withAssembler(func() documentAssembler { return asm }))

	res, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	defer res.Cleanup()

	if len(asm.pages) != len(srcs) {
		t.Fatalf("assembled %d pages, want %d", len(asm.pages), len(srcs))
	}
	for i, page := range asm.pages {
		if want := float64(10 + i); page.width != want {
			t.Errorf("page %d width = %g, want %g (DOM order violated)", i, page.width, want)
		}
	}
	if !asm.finalized {
		t.Error("assembler was never finalized")
	}
}

func TestGenerate_PerImageFailureDropped(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"https://example.com/ok1.jpg",
		"https://example.com/broken.jpg",
		"https://example.com/ok2.jpg",
	}
	fetcher := &mockFetcher{
		responses: map[string][]byte{
			"https://example.com/ok1.jpg": encodeJPEG(t, 10, 5),
			"https://example.com/ok2.jpg": encodeJPEG(t, 20, 5),
		},
		errs: map[string]error{
			"https://example.com/broken.jpg": errors.New("connection reset"),
		},
	}
	asm := &mockAssembler{}
	svc := New(withRenderer(&mockRenderer{srcs: srcs}), withFetcher(fetcher),
		withAssembler(func() documentAssembler { return asm }))

	res, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v, per-image failures must not abort the run", err)
	}
	defer res.Cleanup()

	if res.PageCount != 2 || res.Failed != 1 {
		t.Errorf("PageCount = %d, Failed = %d; want 2 and 1", res.PageCount, res.Failed)
	}
	if asm.pages[0].width != 10 || asm.pages[1].width != 20 {
		t.Errorf("surviving pages out of order: %+v", asm.pages)
	}
}

func TestGenerate_UndecodableImageDropped(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"https://example.com/garbage.jpg",
		"https://example.com/badwebp.webp",
	}
	fetcher := &mockFetcher{responses: map[string][]byte{
		"https://example.com/garbage.jpg":  []byte("not a jpeg"),
		"https://example.com/badwebp.webp": []byte("not a webp"),
	}}
	svc := New(withRenderer(&mockRenderer{srcs: srcs}), withFetcher(fetcher),
		withAssembler(func() documentAssembler { return &mockAssembler{} }))

	_, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("Generate() error = %v, want ErrNoImages when every candidate drops", err)
	}
}

func TestGenerate_NoEligibleImages(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{srcs: []string{
		"data:image/png;base64,AAAA",
		"https://example.com/only.png",
	}}
	svc := New(withRenderer(renderer), withFetcher(&mockFetcher{}),
		withAssembler(func() documentAssembler { return &mockAssembler{} }))

	_, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("Generate() error = %v, want ErrNoImages", err)
	}
}

func TestGenerate_EmptyPage(t *testing.T) {
	t.Parallel()

	svc := New(withRenderer(&mockRenderer{}), withFetcher(&mockFetcher{}),
		withAssembler(func() documentAssembler { return &mockAssembler{} }))

	_, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("Generate() error = %v, want ErrNoImages on a page with no images", err)
	}
}

func TestGenerate_CleanupRemovesArtifacts(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{responses: map[string][]byte{
		"https://example.com/a.jpg": encodeJPEG(t, 6, 6),
	}}
	svc := New(withRenderer(&mockRenderer{srcs: []string{"https://example.com/a.jpg"}}),
		withFetcher(fetcher),
		withAssembler(func() documentAssembler { return &mockAssembler{} }))

	res, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	artifacts := append([]string(nil), res.tempFiles...)
	if len(artifacts) != 2 { // one image temp + the PDF
		t.Fatalf("tracked %d artifacts, want 2", len(artifacts))
	}
	for _, p := range artifacts {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact %s missing before Cleanup: %v", p, err)
		}
	}

	res.Cleanup()
	for _, p := range artifacts {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("artifact %s still present after Cleanup", p)
		}
	}

	// Cleanup is idempotent
	res.Cleanup()
}

func TestGenerate_AssemblerFailureDropsPage(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"https://example.com/good.jpg",
		"https://example.com/doomed.jpg",
	}
	fetcher := &mockFetcher{responses: map[string][]byte{
		"https://example.com/good.jpg":   encodeJPEG(t, 10, 5),
		"https://example.com/doomed.jpg": encodeJPEG(t, 99, 5),
	}}

	rejecting := &rejectWideAssembler{inner: &mockAssembler{}, maxWidth: 50}
	svc := New(withRenderer(&mockRenderer{srcs: srcs}), withFetcher(fetcher),
		withAssembler(func() documentAssembler { return rejecting }))

	res, err := svc.Generate(context.Background(), Input{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	defer res.Cleanup()

	if res.PageCount != 1 || res.Failed != 1 {
		t.Errorf("PageCount = %d, Failed = %d; want 1 and 1", res.PageCount, res.Failed)
	}
}

func TestService_Close(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{}
	svc := New(withRenderer(renderer))
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !renderer.closed {
		t.Error("Close() did not release the renderer")
	}
}
