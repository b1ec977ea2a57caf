package core

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

// Fonts accepted by the PDF export.
var Fonts = []string{
	"anonymous",
	"arial",
	"calibri",
	"liberation",
	"rubik",
	"segoeui",
	"times",
	"truetypewriter",
}

const (
	MinFontSize = 6
	MaxFontSize = 66
)

// ExportOptions are the knobs of the fixed-layout export.
type ExportOptions struct {
	Font     string
	FontSize int
	// Tree includes every sub-page below the exported one.
	Tree bool
}

// DefaultExportOptions mirrors the backend defaults.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Font: "times", FontSize: 16}
}

// Validate checks the options locally before any request is made.
func (o ExportOptions) Validate() error {
	if !slices.Contains(Fonts, o.Font) {
		return Invalid("font", fmt.Sprintf("unknown font %q", o.Font))
	}
	if o.FontSize < MinFontSize || o.FontSize > MaxFontSize {
		return Invalid("fontSize", fmt.Sprintf("must be between %d and %d", MinFontSize, MaxFontSize))
	}
	return nil
}

// Query renders the options as the export endpoint's query parameters.
func (o ExportOptions) Query() url.Values {
	q := url.Values{}
	q.Set("font", o.Font)
	q.Set("fontSize", strconv.Itoa(o.FontSize))
	q.Set("tree", strconv.FormatBool(o.Tree))
	return q
}

// Export is the binary returned by the export endpoint.
type Export struct {
	FileName string
	Data     []byte
}
