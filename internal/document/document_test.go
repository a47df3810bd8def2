package document

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/imaging"
	"github.com/fpang/photo-album-pipeline/internal/storage"
)

func TestMMToPoints(t *testing.T) {
	if got, want := MMToPoints(200), 200*2.834645669; math.Abs(got-want) > 1e-9 {
		t.Errorf("MMToPoints(200) = %v, want %v", got, want)
	}
	if got := MMToPoints(25.4); math.Abs(got-72) > 1e-6 {
		t.Errorf("MMToPoints(25.4) = %v, want 72", got)
	}
}

func TestFormats(t *testing.T) {
	f, err := Lookup("")
	if err != nil || f.Name != DefaultFormat {
		t.Fatalf("Lookup(\"\") = %+v, %v", f, err)
	}
	if w, h := f.PixelSize(); w != 2362 || h != 2362 {
		t.Errorf("print_20x20 pixels = %dx%d, want 2362x2362", w, h)
	}
	w, h := f.PageSizePoints()
	if math.Abs(w-MMToPoints(200)) > 1e-9 || math.Abs(h-MMToPoints(200)) > 1e-9 {
		t.Errorf("print_20x20 points = %vx%v", w, h)
	}

	bled := f.WithBleed(3)
	if w, _ := bled.PageSizePoints(); math.Abs(w-MMToPoints(206)) > 1e-9 {
		t.Errorf("bleed page width = %v, want %v", w, MMToPoints(206))
	}
	if f.BleedMM != 0 {
		t.Error("WithBleed must not modify the receiver")
	}

	a4, _ := Lookup("print_a4_landscape")
	if w, h := a4.PixelSize(); w <= h {
		t.Errorf("a4 landscape pixels = %dx%d", w, h)
	}

	if _, err := Lookup("print_poster"); err == nil {
		t.Error("expected error for unknown format")
	}
	if len(Names()) != 5 {
		t.Errorf("Names() = %v", Names())
	}
}

func storePage(t *testing.T, store storage.Store, jobID string, index int) album.ComposedPage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 100, B: 50, A: 255}}, image.Point{}, draw.Src)
	data, err := imaging.EncodeJPEG(img, 90)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := store.Put(context.Background(), storage.PageKey(jobID, index), data, "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	return album.ComposedPage{PageIndex: index, ImageRef: ref}
}

func TestAssemble(t *testing.T) {
	store := storage.NewMemoryStore()
	pages := []album.ComposedPage{storePage(t, store, "job", 0), storePage(t, store, "job", 2)}
	format, _ := Lookup("print_20x20")

	a := NewAssembler(store)
	pdf, err := a.build(context.Background(), pages, format)
	if err != nil {
		t.Fatalf("build() error: %v", err)
	}
	if pdf.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", pdf.PageCount())
	}
	w, h := pdf.GetPageSize()
	if math.Abs(w-MMToPoints(200)) > 1e-6 || math.Abs(h-MMToPoints(200)) > 1e-6 {
		t.Errorf("page size = %vx%v pt, want %v", w, h, MMToPoints(200))
	}

	ref, err := a.Assemble(context.Background(), "job", pages, format)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if ref != "job/album.pdf" {
		t.Errorf("ref = %q", ref)
	}
	data, _ := store.Get(context.Background(), ref)
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("stored document is not a PDF: %q", data[:min(len(data), 8)])
	}
	if store.ContentType(ref) != "application/pdf" {
		t.Errorf("content type = %q", store.ContentType(ref))
	}
}

func TestAssemble_Errors(t *testing.T) {
	store := storage.NewMemoryStore()
	a := NewAssembler(store)
	format, _ := Lookup("")

	if _, err := a.Assemble(context.Background(), "job", nil, format); !errors.Is(err, ErrNoPages) {
		t.Errorf("err = %v, want ErrNoPages", err)
	}

	p0, p1 := storePage(t, store, "job", 0), storePage(t, store, "job", 1)
	if _, err := a.Assemble(context.Background(), "job", []album.ComposedPage{p1, p0}, format); err == nil {
		t.Error("expected error for unsorted pages")
	}

	missing := album.ComposedPage{PageIndex: 5, ImageRef: "job/pages/page-005.jpg"}
	if _, err := a.Assemble(context.Background(), "job", []album.ComposedPage{p0, missing}, format); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
