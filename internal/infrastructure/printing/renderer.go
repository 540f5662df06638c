package printing

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RenderRequest is one sheet to turn into a PDF: the rendered template
// HTML plus the page setup from the template registry.
type RenderRequest struct {
	HTML        string
	PaperSize   PaperSize
	Orientation Orientation
	// Margins are in millimeters.
	Margins Margins
	// Title lands in the PDF metadata, not on the page.
	Title string
	// Timeout overrides the renderer's default when set.
	Timeout time.Duration
}

// RenderResult is the finished PDF.
type RenderResult struct {
	PDFData        []byte
	RenderDuration time.Duration
}

// PDFRenderer turns sheet HTML into a PDF. Two implementations exist:
// chromedp against a headless Chrome, and wkhtmltopdf for hosts without
// one. Close releases whatever the backend holds open.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError is the error type for the rendering and artifact storage
// path. The code makes failures sortable in run records without parsing
// message text.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Render failure codes.
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeUnknownTemplate  = "UNKNOWN_TEMPLATE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// validateRequest applies the checks both renderer backends share. A nil
// or empty request means a template rendered to nothing, which is a bug
// upstream, not a renderer condition to paper over.
func validateRequest(req *RenderRequest) *RenderError {
	if req == nil {
		return NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return NewRenderError(ErrCodeInvalidHTML, "sheet HTML is empty", nil)
	}
	if !req.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}
	return nil
}

// renderTimeout returns the effective timeout for one render.
func renderTimeout(req *RenderRequest, fallback time.Duration) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return fallback
}

// timeoutError classifies a failed render whose context expired or was
// cancelled; it returns nil when the failure was the backend's own.
func timeoutError(ctx context.Context, timeout time.Duration, cause error) *RenderError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewRenderError(ErrCodeRenderTimeout, "rendering timed out after "+timeout.String(), cause)
	case errors.Is(ctx.Err(), context.Canceled):
		return NewRenderError(ErrCodeRenderTimeout, "rendering was cancelled", cause)
	default:
		return nil
	}
}

// wrapDocument puts a bare sheet fragment into a minimal HTML document.
// The embedded templates emit full documents already; this covers direct
// callers handing in fragments.
func wrapDocument(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>")
		b.WriteString(req.Title)
		b.WriteString("</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}
