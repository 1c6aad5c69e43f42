package billing

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Renderer turns an HTML document into PDF bytes. The production
// implementation lives in the report package (Gotenberg); tests inject stubs.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

var (
	// ErrRenderTimeout indicates the external renderer exceeded its deadline.
	ErrRenderTimeout = errors.New("billing: render timed out")
	// ErrRenderFailure indicates the external renderer failed outright.
	ErrRenderFailure = errors.New("billing: render failed")
	// ErrArchiveFailure indicates the invoice+cover archive could not be built.
	ErrArchiveFailure = errors.New("billing: archive assembly failed")
)

// Document is a finished downloadable artifact.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RenderObserver receives the outcome and duration of every renderer
// round trip. The production implementation is the prometheus registry in
// internal/observability.
type RenderObserver interface {
	ObserveRender(outcome string, elapsed time.Duration)
}

// Coordinator decides the output shape for one invoice request: a single
// rendered PDF, or an invoice+cover pair packed into a zip archive. Any
// temporary file created during archive assembly is removed on every exit
// path.
type Coordinator struct {
	renderer Renderer
	timeout  time.Duration
	logger   *slog.Logger
	metrics  RenderObserver

	tempDir func() (string, error)
}

// NewCoordinator constructs a Coordinator. A zero timeout disables the
// render deadline.
func NewCoordinator(renderer Renderer, timeout time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		renderer: renderer,
		timeout:  timeout,
		logger:   logger,
		tempDir: func() (string, error) {
			return os.MkdirTemp("", "fueldesk-bundle-"+uuid.NewString())
		},
	}
}

// WithMetrics attaches a render observer. Every renderer call is reported
// with outcome ok, timeout or failure.
func (c *Coordinator) WithMetrics(obs RenderObserver) *Coordinator {
	c.metrics = obs
	return c
}

// Assemble renders the invoice (and, when includeCover is set, the cover)
// and returns the final artifact. Renderer failure for either document
// aborts the whole request; no partial artifact is ever returned. The
// render timeout is one budget for the whole call, so an invoice+cover
// pair shares a single deadline.
func (c *Coordinator) Assemble(ctx context.Context, orgName string, month, year int, invoiceHTML, coverHTML string, includeCover bool) (Document, error) {
	if c == nil || c.renderer == nil {
		return Document{}, fmt.Errorf("billing coordinator not initialised")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	base := fmt.Sprintf("%s_%s %d", orgName, MonthName(month), year)

	invoicePDF, err := c.render(ctx, invoiceHTML)
	if err != nil {
		return Document{}, fmt.Errorf("render invoice: %w", err)
	}
	if !includeCover {
		return Document{
			Filename:    base + "-invoice.pdf",
			ContentType: "application/pdf",
			Data:        invoicePDF,
		}, nil
	}

	coverPDF, err := c.render(ctx, coverHTML)
	if err != nil {
		return Document{}, fmt.Errorf("render cover: %w", err)
	}

	archive, err := c.packArchive(base, invoicePDF, coverPDF)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Filename:    base + "-invoice-with-cover.zip",
		ContentType: "application/zip",
		Data:        archive,
	}, nil
}

func (c *Coordinator) render(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()
	data, err := c.renderer.RenderHTML(ctx, html)
	if err != nil {
		err = classifyRenderError(err)
		c.observe(err, time.Since(start))
		return nil, err
	}
	if len(data) == 0 {
		c.observe(ErrRenderFailure, time.Since(start))
		return nil, ErrRenderFailure
	}
	c.observe(nil, time.Since(start))
	return data, nil
}

func (c *Coordinator) observe(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrRenderTimeout):
		outcome = "timeout"
	case err != nil:
		outcome = "failure"
	}
	c.metrics.ObserveRender(outcome, elapsed)
}

// packArchive writes both members into a zip on disk, then reads it back.
// The scratch directory is removed on every return path.
func (c *Coordinator) packArchive(base string, invoicePDF, coverPDF []byte) ([]byte, error) {
	dir, err := c.tempDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && c.logger != nil {
			c.logger.Warn("remove bundle scratch dir", slog.String("dir", dir), slog.Any("error", rmErr))
		}
	}()

	archivePath := filepath.Join(dir, base+"-invoice-with-cover.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
	}

	zw := zip.NewWriter(f)
	members := []struct {
		name string
		data []byte
	}{
		{base + "-invoice.pdf", invoicePDF},
		{base + "-cover.pdf", coverPDF},
	}
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			_ = zw.Close()
			_ = f.Close()
			return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
		}
		if _, err := w.Write(m.data); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFailure, err)
	}
	return data, nil
}

func classifyRenderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrRenderFailure, err)
}
