package preview

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/smazurov/videoconcat/internal/media"
)

func testFrame() media.Frame {
	// 2x1: one red pixel, one blue pixel.
	return media.Frame{Width: 2, Height: 1, Pix: []byte{255, 0, 0, 0, 0, 255}}
}

func TestCaptionString(t *testing.T) {
	c := Caption{Index: 250, Timestamp: 10}
	if got, want := c.String(), "Frame #250\nTime 10.0s"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestToImage(t *testing.T) {
	img, err := ToImage(testFrame())
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 || a>>8 != 255 {
		t.Errorf("pixel 0 = %d,%d,%d,%d, want red", r>>8, g>>8, b>>8, a>>8)
	}
	r, _, b, _ = img.At(1, 0).RGBA()
	if r != 0 || b>>8 != 255 {
		t.Errorf("pixel 1 is not blue")
	}

	if _, err := ToImage(media.Frame{Width: 2, Height: 2, Pix: []byte{1, 2, 3}}); err == nil {
		t.Error("expected error for short frame")
	}
	if _, err := ToImage(media.Frame{}); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestLatest(t *testing.T) {
	l := NewLatest()
	if _, ok := l.Snapshot(); ok {
		t.Fatal("empty Latest should report no snapshot")
	}

	var gotSeq uint64
	l.OnShow(func(_ Caption, seq uint64) { gotSeq = seq })

	if err := l.Show(testFrame(), Caption{Index: 0}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := l.Show(testFrame(), Caption{Index: 5, Timestamp: 0.2}); err != nil {
		t.Fatalf("Show: %v", err)
	}

	snap, ok := l.Snapshot()
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.Sequence != 2 || gotSeq != 2 {
		t.Errorf("Sequence = %d (callback %d), want 2", snap.Sequence, gotSeq)
	}
	if snap.Caption.Index != 5 {
		t.Errorf("Caption.Index = %d, want 5", snap.Caption.Index)
	}
	if _, err := jpeg.Decode(bytes.NewReader(snap.JPEG)); err != nil {
		t.Errorf("snapshot is not a JPEG: %v", err)
	}
}

func solidFrame(w, h int, r, g, b byte) media.Frame {
	pix := make([]byte, media.FrameSize(w, h))
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return media.Frame{Width: w, Height: h, Pix: pix}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	p := NewFile(path, nil)

	if err := p.Show(solidFrame(120, 60, 255, 0, 0), Caption{Index: 3, Timestamp: 0.5}); err != nil {
		t.Fatalf("Show: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Errorf("bounds = %v, want 120x60", b)
	}

	// The caption band darkens the corner and carries white text.
	if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 >= 128 {
		t.Errorf("corner red = %d, want darkened by the caption band", r>>8)
	}
	if r, g, b, _ := img.At(119, 59).RGBA(); r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("far corner = (%d, %d, %d), want untouched red", r>>8, g>>8, b>>8)
	}
	if !hasWhite(img, image.Rect(0, 0, 80, 35)) {
		t.Error("no caption text drawn")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestDrawCaptionClipsToSmallFrames(t *testing.T) {
	img, err := Render(testFrame(), Caption{Index: 123456, Timestamp: 9999})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("bounds = %v, want 2x1", b)
	}
}

func hasWhite(img image.Image, area image.Rectangle) bool {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if r, g, b, _ := img.At(x, y).RGBA(); r>>8 == 255 && g>>8 == 255 && b>>8 == 255 {
				return true
			}
		}
	}
	return false
}

func TestNoop(t *testing.T) {
	var p Previewer = Noop{}
	if err := p.Show(media.Frame{}, Caption{}); err != nil {
		t.Errorf("Noop.Show = %v", err)
	}
}
