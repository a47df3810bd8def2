package document

import (
	"fmt"
	"math"
	"sort"
)

// PointsPerMM is the exact millimeter to PDF point factor (72 / 25.4).
const PointsPerMM = 2.834645669

// DefaultFormat is used when a job does not name one.
const DefaultFormat = "print_20x20"

// Format is a physical print format. Dimensions are the trimmed page size;
// BleedMM is added on every side.
type Format struct {
	Name     string
	WidthMM  float64
	HeightMM float64
	BleedMM  float64
	DPI      int
}

var formats = map[string]Format{
	"print_20x20":        {Name: "print_20x20", WidthMM: 200, HeightMM: 200, DPI: 300},
	"print_30x30":        {Name: "print_30x30", WidthMM: 300, HeightMM: 300, DPI: 300},
	"print_15x15":        {Name: "print_15x15", WidthMM: 150, HeightMM: 150, DPI: 300},
	"print_a4_landscape": {Name: "print_a4_landscape", WidthMM: 297, HeightMM: 210, DPI: 300},
	"print_a4_portrait":  {Name: "print_a4_portrait", WidthMM: 210, HeightMM: 297, DPI: 300},
}

// Lookup returns the named format. An empty name selects DefaultFormat.
func Lookup(name string) (Format, error) {
	if name == "" {
		name = DefaultFormat
	}
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("unknown print format %q", name)
	}
	return f, nil
}

// Names lists the registered formats in sorted order.
func Names() []string {
	names := make([]string, 0, len(formats))
	for n := range formats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithBleed returns a copy of f with the given bleed.
func (f Format) WithBleed(mm float64) Format {
	f.BleedMM = mm
	return f
}

// MMToPoints converts millimeters to PDF points.
func MMToPoints(mm float64) float64 {
	return mm * PointsPerMM
}

// PageSizeMM is the full page box including bleed.
func (f Format) PageSizeMM() (w, h float64) {
	return f.WidthMM + 2*f.BleedMM, f.HeightMM + 2*f.BleedMM
}

// PageSizePoints is the full page box including bleed, in points.
func (f Format) PageSizePoints() (w, h float64) {
	wmm, hmm := f.PageSizeMM()
	return MMToPoints(wmm), MMToPoints(hmm)
}

// PixelSize is the raster size of a composed page at the format DPI.
func (f Format) PixelSize() (w, h int) {
	wmm, hmm := f.PageSizeMM()
	return mmToPixels(wmm, f.DPI), mmToPixels(hmm, f.DPI)
}

func mmToPixels(mm float64, dpi int) int {
	return int(math.Round(mm / 25.4 * float64(dpi)))
}
