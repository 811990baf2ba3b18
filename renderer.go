package pics2pdf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// pageRenderer abstracts page loading to enable testing without a browser.
type pageRenderer interface {
	// ImageSources navigates to url and returns every image element's
	// resolved source attribute, preserving DOM order.
	ImageSources(ctx context.Context, url string) ([]string, error)
	Close() error
}

// Compile-time interface check
var _ pageRenderer = (*rodRenderer)(nil)

// collectImageSources gathers the src of every img element in DOM order.
const collectImageSources = `() => Array.from(document.images, img => img.src)`

// rodRenderer implements pageRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	browser *rod.Browser
	timeout time.Duration
}

// newRodRenderer creates a rodRenderer with the given navigation timeout.
func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// ImageSources opens url in headless Chrome, waits for DOMContentLoaded
// (not full network idle), and collects image sources in DOM order.
// The page is closed on every exit path.
func (r *rodRenderer) ImageSources(ctx context.Context, url string) ([]string, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	// Bound the wait by the renderer timeout or an earlier ctx deadline
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Timeout(timeout)

	wait := p.WaitEvent(&proto.PageDomContentEventFired{})
	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	wait()

	// Check context after navigation settles
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj, err := p.Eval(collectImageSources)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}

	var srcs []string
	for _, v := range obj.Value.Arr() {
		srcs = append(srcs, v.Str())
	}
	return srcs, nil
}
