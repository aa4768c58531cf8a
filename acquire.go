package cleanscore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodedImage is a report photo normalized for scoring.
type DecodedImage struct {
	Image       *image.RGBA // opaque, upright, origin at (0,0)
	Format      string      // decoder name: "jpeg", "png", ...
	Source      string      // path or URL it came from
	Fingerprint string      // hex difference hash; empty if hashing failed
}

// Acquire resolves ref into a decoded image.
//
// A nil image with a nil error means there is no image to score: ref is
// absent, or it names a local file that does not exist. Any other failure is
// an *AcquireError and only disables the image signal.
func (cfg *Config) Acquire(ctx context.Context, ref ImageRef) (*DecodedImage, error) {
	cfg.defaults()

	switch ref.Kind {
	case RefLocal:
		return cfg.acquireLocal(ref.Value)
	case RefRemote:
		r, err := cfg.Download(ctx, ref.Value)
		if err != nil {
			return nil, err
		}
		return cfg.decodeImage(r.Data, ref.Value)
	default:
		return nil, nil
	}
}

func (cfg *Config) acquireLocal(path string) (*DecodedImage, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("cleanscore: image not found, scoring without it", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, &AcquireError{Kind: ReadFailed, Ref: path, Err: err}
	}
	if info.IsDir() {
		return nil, &AcquireError{Kind: ReadFailed, Ref: path, Err: errors.New("is a directory")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &AcquireError{Kind: ReadFailed, Ref: path, Err: err}
	}
	defer f.Close()

	data, err := readCapped(f, cfg.MaxImageBytes)
	if err != nil {
		return nil, &AcquireError{Kind: ReadFailed, Ref: path, Err: err}
	}
	return cfg.decodeImage(data, path)
}

// readCapped reads r fully, failing with ErrImageTooLarge past limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, limit)
	}
	return data, nil
}

// decodeImage decodes data, applies its EXIF orientation and flattens it
// onto white. Dimensions are checked from the header before pixels are
// allocated.
func (cfg *Config) decodeImage(data []byte, source string) (*DecodedImage, error) {
	ic, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &AcquireError{Kind: DecodeFailed, Ref: source, Err: err}
	}
	if ic.Width <= 0 || ic.Height <= 0 || ic.Width > cfg.MaxImagePixels/ic.Height {
		return nil, &AcquireError{Kind: DecodeFailed, Ref: source,
			Err: fmt.Errorf("dimensions %dx%d exceed %d pixels", ic.Width, ic.Height, cfg.MaxImagePixels)}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &AcquireError{Kind: DecodeFailed, Ref: source, Err: err}
	}

	rgb := orient(toOpaqueRGBA(img), ExtractOrientation(data, format))
	return &DecodedImage{
		Image:       rgb,
		Format:      format,
		Source:      source,
		Fingerprint: fingerprint(rgb),
	}, nil
}

// toOpaqueRGBA draws img over an opaque white canvas anchored at (0,0).
func toOpaqueRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// fingerprint returns the perceptual difference hash of img, or "" when
// hashing fails (graceful degradation).
func fingerprint(img image.Image) string {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", hash.GetHash())
}
