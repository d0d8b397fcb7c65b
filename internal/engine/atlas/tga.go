package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
	tgaHeaderSize   = 18
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// decodeTGA reads an uncompressed or RLE true-color TGA with 24 or 32 bits
// per pixel, the formats texture packs ship tiles in.
func decodeTGA(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("tga: header too short")
	}

	idLength := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16]) / 8
	if bpp != 3 && bpp != 4 {
		return nil, fmt.Errorf("tga: unsupported depth %d bits", data[16])
	}
	topDown := data[17]&0x20 != 0

	src := data[min(tgaHeaderSize+idLength, len(data)):]
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	pixel := func(p []byte) color.NRGBA {
		c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
		if bpp == 4 {
			c.A = p[3]
		}
		return c
	}
	put := func(i int, c color.NRGBA) {
		x, y := i%width, i/width
		if !topDown {
			y = height - 1 - y
		}
		img.SetNRGBA(x, y, c)
	}

	total := width * height
	if kind == tgaTrueColor {
		if len(src) < total*bpp {
			return nil, errTGATruncated
		}
		for i := 0; i < total; i++ {
			put(i, pixel(src[i*bpp:]))
		}
		return img, nil
	}

	for i, off := 0, 0; i < total; {
		if off >= len(src) {
			return nil, errTGATruncated
		}
		header := src[off]
		off++
		count := int(header&0x7F) + 1
		if header&0x80 != 0 {
			if off+bpp > len(src) {
				return nil, errTGATruncated
			}
			c := pixel(src[off:])
			off += bpp
			for ; count > 0 && i < total; count-- {
				put(i, c)
				i++
			}
			continue
		}
		for ; count > 0 && i < total; count-- {
			if off+bpp > len(src) {
				return nil, errTGATruncated
			}
			put(i, pixel(src[off:]))
			off += bpp
			i++
		}
	}
	return img, nil
}
