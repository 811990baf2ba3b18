package pics2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyURL       = errors.New("page URL cannot be empty")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrNavigation     = errors.New("failed to load page")
	ErrExtract        = errors.New("failed to collect image sources")
	ErrNoImages       = errors.New("no eligible images found on page")
	ErrAssembly       = errors.New("PDF assembly failed")
	ErrFinalize       = errors.New("failed to finalize PDF")
)
