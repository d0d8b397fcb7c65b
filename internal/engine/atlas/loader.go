package atlas

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/xenotech/internal/logger"
)

// extensions are tried in order for every tile file.
var extensions = []string{".png", ".bmp", ".tga"}

type tileImages struct {
	name   string
	layers [LayerCount]image.Image
}

// LoadDir loads one tile per name from dir. For a name "stone" the albedo
// layer is read from stone.png, the heightmap from stone_s.png and the
// normal map from stone_n.png. Only the albedo layer is required. Files are
// decoded concurrently; mappings follow the order of names.
func LoadDir(ctx context.Context, dir string, names []string) (*Atlas, error) {
	tiles := make([]tileImages, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names {
		tiles[i].name = name
		for l := Layer(0); l < LayerCount; l++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				img, err := decodeTile(dir, name+l.Suffix())
				if errors.Is(err, fs.ErrNotExist) && l != Albedo {
					return nil
				}
				if err != nil {
					return fmt.Errorf("loading %s %s: %w", name, l, err)
				}
				tiles[i].layers[l] = img
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, t := range tiles {
		mapping, err := b.Add(t.name, t.layers[:]...)
		if err != nil {
			return nil, err
		}
		logger.Debug("atlas tile loaded",
			zap.String("name", t.name),
			zap.Uint32("mapping", mapping),
		)
	}
	logger.Info("atlas loaded", zap.String("dir", dir), zap.Int("tiles", len(tiles)))
	return b.Build(), nil
}

func decodeTile(dir, base string) (image.Image, error) {
	for _, ext := range extensions {
		f, err := os.Open(filepath.Join(dir, base+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var img image.Image
		if ext == ".tga" {
			img, err = decodeTGA(f)
		} else {
			img, _, err = image.Decode(f)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s%s: %w", base, ext, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%s: %w", base, fs.ErrNotExist)
}
