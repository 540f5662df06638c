// Package printing renders the report sheets to PDF.
//
// This package contains:
// - PDFRenderer interface with chromedp and wkhtmltopdf implementations
// - TemplateEngine for rendering the embedded sheet templates
// - Sheet view models binding domain aggregates to templates
// - ReportStorage for storing generated artifacts on disk
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	engine := NewTemplateEngine()
//	out, err := engine.RenderNamed(TemplateChecklist, sheet)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        out.HTML,
//	    PaperSize:   PaperSizeLetter,
//	    Orientation: OrientationPortrait,
//	    Margins:     DefaultMargins(),
//	})
package printing
