// Package capture writes rendered frames and pipeline stages to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Writer names and writes PNG captures under one directory.
type Writer struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewWriter creates a capture writer. An empty dir writes to the working
// directory.
func NewWriter(outputDir, prefix string) *Writer {
	if prefix == "" {
		prefix = "frame"
	}
	return &Writer{outputDir: outputDir, prefix: prefix, now: time.Now}
}

// SetOutputDir sets the output directory.
func (w *Writer) SetOutputDir(dir string) {
	w.outputDir = dir
}

// FramePath returns the path of a frame capture. An empty stage names the
// final composite.
func (w *Writer) FramePath(frame int, stage string) string {
	name := fmt.Sprintf("%s_%04d.png", w.prefix, frame)
	if stage != "" {
		name = fmt.Sprintf("%s_%04d_%s.png", w.prefix, frame, stage)
	}
	return filepath.Join(w.outputDir, name)
}

// SaveFrame writes img as frame (and optionally stage) and returns the path.
func (w *Writer) SaveFrame(img image.Image, frame int, stage string) (string, error) {
	path := w.FramePath(frame, stage)
	if err := w.write(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// Screenshot writes img under a timestamped name.
func (w *Writer) Screenshot(img image.Image) (string, error) {
	timestamp := w.now().Format("2006-01-02_15-04-05")
	path := filepath.Join(w.outputDir, fmt.Sprintf("%s_%s.png", w.prefix, timestamp))
	if err := w.write(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// FromPixels builds an image from tightly packed RGBA rows. flipY reverses
// the row order, for readbacks with a bottom-left origin.
func FromPixels(pixels []byte, width, height int, flipY bool) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcY := y
		if flipY {
			srcY = height - 1 - y
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[srcY*rowSize:(srcY+1)*rowSize])
	}
	return img, nil
}

// write encodes to a temporary file and renames it into place so readers
// never see a partial PNG.
func (w *Writer) write(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".capture-*.png")
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming capture: %w", err)
	}
	return nil
}
