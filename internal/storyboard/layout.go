package storyboard

import "github.com/fpang/photo-album-pipeline/internal/album"

// Page margins and gutters in page-fraction units.
const (
	margin = 0.06
	gutter = 0.03
)

// LayoutForCount picks the layout for an interior page holding n photos.
func LayoutForCount(n int) album.LayoutType {
	switch {
	case n <= 0:
		return album.LayoutTextFocus
	case n == 1:
		return album.LayoutSingle
	case n == 2:
		return album.LayoutDouble
	default:
		return album.LayoutTriple
	}
}

// Accepts reports whether layout can hold n photos.
func Accepts(layout album.LayoutType, n int) bool {
	switch layout {
	case album.LayoutCover:
		return n <= 1
	case album.LayoutSingle:
		return n == 1
	case album.LayoutDouble:
		return n == 2
	case album.LayoutTriple:
		return n >= 3
	case album.LayoutTextFocus, album.LayoutBackCover:
		return n == 0
	default:
		return false
	}
}

// DefaultPlacement is where text sits when the planner does not say.
func DefaultPlacement(layout album.LayoutType) album.Placement {
	switch layout {
	case album.LayoutTextFocus, album.LayoutBackCover:
		return album.PlacementCenter
	default:
		return album.PlacementBottom
	}
}

// SlotsFor returns exactly one slot per photo. A layout that cannot hold
// len(photos) is laid out as LayoutForCount(len(photos)) instead.
func SlotsFor(layout album.LayoutType, photos []album.AnalyzedPhoto) []album.Slot {
	n := len(photos)
	if n == 0 {
		return []album.Slot{}
	}
	if !Accepts(layout, n) {
		layout = LayoutForCount(n)
	}

	switch layout {
	case album.LayoutCover:
		return []album.Slot{{X: 0.1, Y: 0.08, W: 0.8, H: 0.64, Aspect: album.SlotAuto}}

	case album.LayoutSingle:
		return []album.Slot{singleSlot(photos[0])}

	case album.LayoutDouble:
		w := (1 - 2*margin - gutter) / 2
		return []album.Slot{
			{X: margin, Y: 0.12, W: w, H: 0.66, Aspect: album.SlotPortrait},
			{X: margin + w + gutter, Y: 0.12, W: w, H: 0.66, Aspect: album.SlotPortrait},
		}

	default:
		return tripleSlots(n)
	}
}

func singleSlot(p album.AnalyzedPhoto) album.Slot {
	switch p.Analysis.SuggestedSlot {
	case album.SlotPortrait:
		return album.Slot{X: 0.2, Y: margin, W: 0.6, H: 0.74, Aspect: album.SlotPortrait}
	case album.SlotSquare:
		return album.Slot{X: 0.15, Y: 0.08, W: 0.7, H: 0.7, Aspect: album.SlotSquare}
	default:
		return album.Slot{X: margin, Y: 0.14, W: 1 - 2*margin, H: 0.6, Aspect: album.SlotLandscape}
	}
}

// tripleSlots lays out a hero photo on the left and stacks the remaining
// n-1 photos in a column on the right.
func tripleSlots(n int) []album.Slot {
	const top, height = 0.08, 0.72
	heroW := 0.56
	colX := margin + heroW + gutter
	colW := 1 - margin - colX

	slots := make([]album.Slot, 0, n)
	slots = append(slots, album.Slot{X: margin, Y: top, W: heroW, H: height, Aspect: album.SlotPortrait})

	rest := n - 1
	cellH := (height - gutter*float64(rest-1)) / float64(rest)
	for i := 0; i < rest; i++ {
		slots = append(slots, album.Slot{
			X:      colX,
			Y:      top + float64(i)*(cellH+gutter),
			W:      colW,
			H:      cellH,
			Aspect: album.SlotAuto,
		})
	}
	return slots
}
