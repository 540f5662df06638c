package printing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBinaryPath   = "wkhtmltopdf"
	defaultTimeout      = 30 * time.Second
	defaultDPI          = 96
	defaultImageQuality = 94
)

// WkhtmltopdfConfig configures the wkhtmltopdf renderer.
type WkhtmltopdfConfig struct {
	// BinaryPath locates wkhtmltopdf; empty searches PATH.
	BinaryPath string
	// DefaultTimeout bounds a single sheet render.
	DefaultTimeout time.Duration
	// TempDir holds the HTML and PDF scratch files.
	TempDir      string
	DPI          int
	ImageQuality int
	Logger       *zap.Logger
}

// WkhtmltopdfRenderer shells out to the wkhtmltopdf binary. It is the
// fallback backend for hosts without a Chrome; margins and page breaks
// come out slightly differently from the chromedp renderer, so the sheet
// templates are checked against both.
type WkhtmltopdfRenderer struct {
	config *WkhtmltopdfConfig
	logger *zap.Logger
}

var _ PDFRenderer = (*WkhtmltopdfRenderer)(nil)

// NewWkhtmltopdfRenderer verifies the binary exists and returns a
// renderer. A missing binary fails here rather than on the first run.
func NewWkhtmltopdfRenderer(config *WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	if config == nil {
		config = &WkhtmltopdfConfig{}
	}
	if config.BinaryPath == "" {
		config.BinaryPath = defaultBinaryPath
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultTimeout
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if config.DPI == 0 {
		config.DPI = defaultDPI
	}
	if config.ImageQuality == 0 {
		config.ImageQuality = defaultImageQuality
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("wkhtmltopdf binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &WkhtmltopdfRenderer{
		config: config,
		logger: log.Named("wkhtmltopdf"),
	}, nil
}

func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Render writes the sheet to a scratch file, runs the binary, and reads
// the PDF back.
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if rerr := validateRequest(req); rerr != nil {
		return nil, rerr
	}

	start := time.Now()
	timeout := renderTimeout(req, r.config.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	htmlPath, err := r.writeScratchHTML(req)
	if err != nil {
		return nil, err
	}
	defer os.Remove(htmlPath)

	pdfFile, err := os.CreateTemp(r.config.TempDir, "output-*.pdf")
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to create temp PDF file", err)
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()
	defer os.Remove(pdfPath)

	args := r.buildArgs(req, htmlPath, pdfPath)
	r.logger.Debug("executing wkhtmltopdf",
		zap.String("binary", r.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if terr := timeoutError(ctx, timeout, err); terr != nil {
			return nil, terr
		}
		r.logger.Error("wkhtmltopdf failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()),
			zap.String("stdout", stdout.String()))
		return nil, NewRenderError(ErrCodeRenderFailed,
			"wkhtmltopdf execution failed: "+stderr.String(), err)
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to read generated PDF", err)
	}
	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	elapsed := time.Since(start)
	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", elapsed))

	return &RenderResult{PDFData: pdfData, RenderDuration: elapsed}, nil
}

func (r *WkhtmltopdfRenderer) writeScratchHTML(req *RenderRequest) (string, error) {
	f, err := os.CreateTemp(r.config.TempDir, "report-*.html")
	if err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to create temp HTML file", err)
	}
	path := f.Name()
	if _, err := f.WriteString(wrapDocument(req)); err != nil {
		f.Close()
		os.Remove(path)
		return "", NewRenderError(ErrCodeRenderFailed, "failed to write HTML to temp file", err)
	}
	f.Close()
	return path, nil
}

// buildArgs maps the request's page setup onto wkhtmltopdf flags. The
// sheets carry no scripts, so javascript and file access stay off.
func (r *WkhtmltopdfRenderer) buildArgs(req *RenderRequest, htmlPath, pdfPath string) []string {
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--dpi", strconv.Itoa(r.config.DPI),
		"--image-quality", strconv.Itoa(r.config.ImageQuality),
		"--disable-javascript",
		"--disable-local-file-access",
	}

	switch req.PaperSize {
	case PaperSizeA4:
		args = append(args, "--page-size", "A4")
	default:
		args = append(args, "--page-size", "Letter")
	}

	if req.Orientation == OrientationLandscape {
		args = append(args, "--orientation", "Landscape")
	} else {
		args = append(args, "--orientation", "Portrait")
	}

	args = append(args,
		"--margin-top", fmt.Sprintf("%.1fmm", req.Margins.Top),
		"--margin-right", fmt.Sprintf("%.1fmm", req.Margins.Right),
		"--margin-bottom", fmt.Sprintf("%.1fmm", req.Margins.Bottom),
		"--margin-left", fmt.Sprintf("%.1fmm", req.Margins.Left),
	)

	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}

	return append(args, htmlPath, pdfPath)
}

// Close is a no-op; each render is a standalone process.
func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}
