// Package pics2pdf turns the raster images of a web page into a single
// PDF document, one page per image, each page sized to the image's
// pixel dimensions.
//
// # Quick Start
//
// Create a service, generate, and clean up the artifacts when done:
//
//	svc := pics2pdf.New()
//	defer svc.Close()
//
//	res, err := svc.Generate(ctx, pics2pdf.Input{
//	    URL:        "https://example.com/gallery",
//	    OutputName: "gallery",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer res.Cleanup()
//	// res.PDFPath holds the finished document until Cleanup is called.
//
// # Pipeline
//
// Generation runs through these stages:
//
//  1. Page rendering via headless Chrome (go-rod), waiting for
//     DOMContentLoaded with a bounded navigation timeout
//  2. Image source extraction in DOM order
//  3. Eligibility filtering (data: URIs and unsupported formats skipped)
//  4. Concurrent fetch and normalization (WebP transcoded to JPEG),
//     joined before assembly; per-image failures are dropped, not fatal
//  5. Ordered assembly with go-pdf/fpdf: page order always follows DOM
//     order, never fetch completion order
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := pics2pdf.New(
//	    pics2pdf.WithNavigationTimeout(2 * time.Minute),
//	    pics2pdf.WithLogger(logger),
//	)
//
// # Parallel Processing
//
// For concurrent generation requests, use ServicePool to manage
// multiple browser instances:
//
//	pool := pics2pdf.NewServicePool(4)
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//	res, err := svc.Generate(ctx, input)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run. For containers
// and CI environments, use ROD_BROWSER_BIN to specify a custom Chrome
// binary; the sandbox is disabled automatically in those setups.
package pics2pdf
