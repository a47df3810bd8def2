package compose

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Fit describes how a photo covers a slot: the photo is scaled to
// ResizedW x ResizedH and the slot-sized window at (CropX, CropY) is kept.
type Fit struct {
	ResizedW, ResizedH int
	CropX, CropY       int
}

// FitRect computes the cover fit of a pw x ph photo into an sw x sh slot. A
// photo relatively wider than the slot is scaled to the slot height and
// cropped horizontally; otherwise it is scaled to the slot width and cropped
// vertically. The crop is centered.
func FitRect(pw, ph, sw, sh int) Fit {
	photoRatio := float64(pw) / float64(ph)
	slotRatio := float64(sw) / float64(sh)

	var f Fit
	if photoRatio > slotRatio {
		f.ResizedH = sh
		f.ResizedW = max(sw, int(math.Round(float64(sh)*photoRatio)))
	} else {
		f.ResizedW = sw
		f.ResizedH = max(sh, int(math.Round(float64(sw)/photoRatio)))
	}
	f.CropX = (f.ResizedW - sw) / 2
	f.CropY = (f.ResizedH - sh) / 2
	return f
}

// CoverFit returns an sw x sh image filled by src using FitRect. Only the
// visible window of the source is resampled.
func CoverFit(src image.Image, sw, sh int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, sw, sh))
	b := src.Bounds()
	if b.Empty() || sw <= 0 || sh <= 0 {
		return dst
	}

	f := FitRect(b.Dx(), b.Dy(), sw, sh)
	scaleX := float64(b.Dx()) / float64(f.ResizedW)
	scaleY := float64(b.Dy()) / float64(f.ResizedH)

	sr := image.Rect(
		b.Min.X+int(math.Round(float64(f.CropX)*scaleX)),
		b.Min.Y+int(math.Round(float64(f.CropY)*scaleY)),
		b.Min.X+int(math.Round(float64(f.CropX+sw)*scaleX)),
		b.Min.Y+int(math.Round(float64(f.CropY+sh)*scaleY)),
	).Intersect(b)

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
	return dst
}
