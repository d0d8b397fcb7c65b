package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFramePath(t *testing.T) {
	w := NewWriter("out", "")
	tests := []struct {
		frame int
		stage string
		want  string
	}{
		{0, "", filepath.Join("out", "frame_0000.png")},
		{12, "ssao", filepath.Join("out", "frame_0012_ssao.png")},
	}
	for _, tt := range tests {
		if got := w.FramePath(tt.frame, tt.stage); got != tt.want {
			t.Errorf("FramePath(%d, %q) = %q, want %q", tt.frame, tt.stage, got, tt.want)
		}
	}
}

func TestSaveFrameRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w := NewWriter(dir, "shot")

	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path, err := w.SaveFrame(src, 3, "")
	if err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(2, 1).RGBA(); r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = %d %d %d", r>>8, g>>8, b>>8)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the capture", len(entries))
	}
}

func TestScreenshotName(t *testing.T) {
	w := NewWriter(t.TempDir(), "view")
	w.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }
	path, err := w.Screenshot(image.NewGray(image.Rect(0, 0, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(path); got != "view_2024-03-01_12-30-05.png" {
		t.Errorf("name = %q", got)
	}
}

func TestFromPixels(t *testing.T) {
	pixels := []byte{
		1, 1, 1, 255,
		2, 2, 2, 255,
	}
	img, err := FromPixels(pixels, 1, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if img.Pix[0] != 2 {
		t.Errorf("flipped first row = %d, want 2", img.Pix[0])
	}
	img, err = FromPixels(pixels, 1, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if img.Pix[0] != 1 {
		t.Errorf("first row = %d, want 1", img.Pix[0])
	}
	if _, err := FromPixels(pixels, 2, 2, false); err == nil {
		t.Error("size mismatch should fail")
	}
}
