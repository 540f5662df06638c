package printing

// PaperSize identifies the output paper dimensions.
type PaperSize string

// Paper sizes used by the report sheets. Reports print on US Letter; A4 is
// kept for households that reprint abroad.
const (
	PaperSizeLetter PaperSize = "LETTER"
	PaperSizeA4     PaperSize = "A4"
)

// Dimensions returns the paper width and height in millimeters.
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	default:
		return 215.9, 279.4
	}
}

// IsValid reports whether the paper size is known.
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeLetter, PaperSizeA4:
		return true
	}
	return false
}

// Orientation defines portrait or landscape output.
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are page margins in millimeters.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins returns the standard report page margins.
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 12, Bottom: 12, Left: 12}
}

// LabelMargins returns the tight margins used for dropsite label sheets.
func LabelMargins() Margins {
	return Margins{Top: 4, Right: 4, Bottom: 4, Left: 4}
}
