package album

import (
	"errors"
	"fmt"
)

// ErrInvalidStoryboard is wrapped by every Validate failure.
var ErrInvalidStoryboard = errors.New("invalid storyboard")

// Validate checks the structural invariants every planner must uphold:
// at least one page, pages indexed 0..N-1, one slot per photo, page 0 is the
// cover, and for full (non-sample) albums the last page is a photo-less back
// cover.
func Validate(sb *Storyboard, isSample bool) error {
	if sb == nil || len(sb.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalidStoryboard)
	}
	for i, p := range sb.Pages {
		if p.Index != i {
			return fmt.Errorf("%w: page %d has index %d", ErrInvalidStoryboard, i, p.Index)
		}
		if len(p.PhotoIDs) != len(p.Slots) {
			return fmt.Errorf("%w: page %d has %d photos for %d slots", ErrInvalidStoryboard, i, len(p.PhotoIDs), len(p.Slots))
		}
	}
	if sb.Pages[0].Layout != LayoutCover {
		return fmt.Errorf("%w: page 0 is %q, want cover", ErrInvalidStoryboard, sb.Pages[0].Layout)
	}
	if !isSample {
		last := sb.Pages[len(sb.Pages)-1]
		if len(sb.Pages) < 2 || last.Layout != LayoutBackCover {
			return fmt.Errorf("%w: last page is %q, want back_cover", ErrInvalidStoryboard, last.Layout)
		}
		if len(last.PhotoIDs) != 0 {
			return fmt.Errorf("%w: back cover carries %d photos", ErrInvalidStoryboard, len(last.PhotoIDs))
		}
	}
	return nil
}
