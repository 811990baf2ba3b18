package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	pics2pdf "github.com/alnah/go-pics2pdf"
)

// newTestRunner builds a PipelineRunner with an injected generate
// function, bypassing the pool and the browser.
func newTestRunner(gw Gateway, generate generateFunc) *PipelineRunner {
	return &PipelineRunner{generate: generate, gw: gw, logger: discardLogger()}
}

func writeTempPDF(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_DeliversDocument(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	path := writeTempPDF(t)
	r := newTestRunner(gw, func(_ context.Context, input pics2pdf.Input) (*pics2pdf.Result, error) {
		if input.URL != "https://example.com" {
			t.Errorf("generate got URL %q", input.URL)
		}
		return &pics2pdf.Result{PDFPath: path, PageCount: 3}, nil
	})

	r.Run(context.Background(), "42", "https://example.com", "report")

	docs := gw.sentDocs()
	if len(docs) != 1 {
		t.Fatalf("sent %d documents, want 1", len(docs))
	}
	if docs[0].filename != "report.pdf" {
		t.Errorf("filename = %q, want report.pdf", docs[0].filename)
	}
	if docs[0].path != path {
		t.Errorf("path = %q, want %q", docs[0].path, path)
	}
	if texts := gw.sentTexts(); len(texts) != 0 {
		t.Errorf("sent %v, want no failure notices", texts)
	}
}

func TestRun_EmptyNameDefaults(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	path := writeTempPDF(t)
	r := newTestRunner(gw, func(context.Context, pics2pdf.Input) (*pics2pdf.Result, error) {
		return &pics2pdf.Result{PDFPath: path, PageCount: 1}, nil
	})

	r.Run(context.Background(), "42", "https://example.com", "")

	docs := gw.sentDocs()
	if len(docs) != 1 || docs[0].filename != "images.pdf" {
		t.Errorf("docs = %v, want one named images.pdf", docs)
	}
}

func TestRun_NoImagesNotice(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	r := newTestRunner(gw, func(context.Context, pics2pdf.Input) (*pics2pdf.Result, error) {
		return nil, pics2pdf.ErrNoImages
	})

	r.Run(context.Background(), "42", "https://example.com", "report")

	texts := gw.sentTexts()
	if len(texts) != 1 || texts[0].text != msgNoImages {
		t.Errorf("sent %v, want no-images notice", texts)
	}
	if len(gw.sentDocs()) != 0 {
		t.Error("no document should be sent on failure")
	}
}

func TestRun_NavigationFailureNotice(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	r := newTestRunner(gw, func(context.Context, pics2pdf.Input) (*pics2pdf.Result, error) {
		return nil, fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", pics2pdf.ErrNavigation)
	})

	r.Run(context.Background(), "42", "https://bad.example", "report")

	texts := gw.sentTexts()
	if len(texts) != 1 || texts[0].text != msgLoadFailed {
		t.Errorf("sent %v, want load-failed notice", texts)
	}
}

func TestRun_GenerationFailureNotice(t *testing.T) {
	t.Parallel()

	// Failures past navigation (temp file creation, finalize) must not
	// blame the URL.
	gw := &fakeGateway{}
	r := newTestRunner(gw, func(context.Context, pics2pdf.Input) (*pics2pdf.Result, error) {
		return nil, errors.New("creating output file: no space left on device")
	})

	r.Run(context.Background(), "42", "https://example.com", "report")

	texts := gw.sentTexts()
	if len(texts) != 1 || texts[0].text != msgGenerateFailed {
		t.Errorf("sent %v, want generic generation-failed notice", texts)
	}
}

func TestRun_DeliveryFailureNotice(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{docErr: errors.New("telegram: file too large")}
	path := writeTempPDF(t)
	r := newTestRunner(gw, func(context.Context, pics2pdf.Input) (*pics2pdf.Result, error) {
		return &pics2pdf.Result{PDFPath: path, PageCount: 1}, nil
	})

	r.Run(context.Background(), "42", "https://example.com", "report")

	texts := gw.sentTexts()
	if len(texts) != 1 || texts[0].text != msgSendFailed {
		t.Errorf("sent %v, want send-failed notice", texts)
	}
}
