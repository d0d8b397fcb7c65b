// Package present uploads CPU-rendered frames to an OpenGL texture and
// draws them over the whole window.
package present

import (
	_ "embed"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/xenotech/internal/logger"
)

var (
	//go:embed shaders/blit.vert
	blitVertexSrc string
	//go:embed shaders/blit.frag
	blitFragmentSrc string
)

// Presenter blits a frame texture to the default framebuffer.
// IMPORTANT: Must be created AFTER the OpenGL context!
type Presenter struct {
	program  uint32
	vao      uint32
	texture  uint32
	uniform  int32
	width    int32
	height   int32
	viewport [2]int32
	log      *zap.Logger
}

// New initializes OpenGL and builds the blit program.
func New() (*Presenter, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	p := &Presenter{log: logger.Named("present")}
	p.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	p.program, err = compileProgram(blitVertexSrc, blitFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	p.uniform = gl.GetUniformLocation(p.program, gl.Str("uFrame\x00"))

	// Core profile requires a bound VAO even without attributes
	gl.GenVertexArrays(1, &p.vao)

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.Disable(gl.DEPTH_TEST)
	return p, nil
}

// Upload replaces the frame texture with img.
func (p *Presenter) Upload(img *image.RGBA) {
	b := img.Bounds()
	w, h := int32(b.Dx()), int32(b.Dy())
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if w != p.width || h != p.height {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		p.width, p.height = w, h
		p.log.Debug("frame texture resized", zap.Int32("width", w), zap.Int32("height", h))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Resize sets the window viewport.
func (p *Presenter) Resize(width, height int) {
	p.viewport = [2]int32{int32(width), int32(height)}
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw blits the last uploaded frame.
func (p *Presenter) Draw() {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if p.width == 0 {
		return
	}
	gl.UseProgram(p.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.Uniform1i(p.uniform, 0)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// ReadPixels reads back the window, bottom row first.
func (p *Presenter) ReadPixels() ([]byte, int, int) {
	w, h := p.viewport[0], p.viewport[1]
	pixels := make([]byte, int(w*h*4))
	if len(pixels) == 0 {
		return pixels, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, int(w), int(h)
}

// Close releases GL objects.
func (p *Presenter) Close() {
	p.log.Info("closing presenter")
	if p.texture != 0 {
		gl.DeleteTextures(1, &p.texture)
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
	}
}
