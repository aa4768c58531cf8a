package cleanscore

import (
	"bytes"
	"image"
	"strconv"

	"github.com/bep/imagemeta"
)

// EXIF orientation values (TIFF/EP tag 0x0112).
const (
	OrientationNormal     = 1
	OrientationFlipH      = 2
	OrientationRotate180  = 3
	OrientationFlipV      = 4
	OrientationTranspose  = 5
	OrientationRotate90   = 6 // rotate 90° clockwise to display
	OrientationTransverse = 7
	OrientationRotate270  = 8 // rotate 90° counter-clockwise to display
)

// metadataFormats maps image.Decode format names to imagemeta formats.
var metadataFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"webp": imagemeta.WebP,
	"tiff": imagemeta.TIFF,
}

// ExtractOrientation reads the EXIF orientation from raw image bytes.
// Returns OrientationNormal when the format carries no EXIF, the tag is
// missing or the metadata cannot be parsed. Never returns an error.
func ExtractOrientation(data []byte, format string) int {
	imgFormat, ok := metadataFormats[format]
	if len(data) == 0 || !ok {
		return OrientationNormal
	}

	orientation := OrientationNormal
	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imgFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.EXIF && ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if v, ok := tagValueInt(ti.Value); ok && v >= OrientationNormal && v <= OrientationRotate270 {
				orientation = v
			}
			return nil
		},
	})
	if err != nil {
		return OrientationNormal
	}
	return orientation
}

// tagValueInt extracts an integer from a tag value.
// EXIF short values surface as various integer types depending on the container.
func tagValueInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case uint8:
		return int(val), true
	case uint16:
		return int(val), true
	case uint32:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(val)
		return n, err == nil
	case []any:
		if len(val) > 0 {
			return tagValueInt(val[0])
		}
	}
	return 0, false
}

// orient returns src transformed so that it displays upright for the given
// EXIF orientation. src must have its origin at (0,0).
func orient(src *image.RGBA, orientation int) *image.RGBA {
	if orientation <= OrientationNormal || orientation > OrientationRotate270 {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := w, h
	if orientation >= OrientationTranspose {
		dw, dh = h, w
	}

	// source maps a destination pixel to the source pixel it shows.
	source := func(dx, dy int) (int, int) {
		switch orientation {
		case OrientationFlipH:
			return w - 1 - dx, dy
		case OrientationRotate180:
			return w - 1 - dx, h - 1 - dy
		case OrientationFlipV:
			return dx, h - 1 - dy
		case OrientationTranspose:
			return dy, dx
		case OrientationRotate90:
			return dy, h - 1 - dx
		case OrientationTransverse:
			return w - 1 - dy, h - 1 - dx
		default: // OrientationRotate270
			return w - 1 - dy, dx
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for dy := range dh {
		for dx := range dw {
			sx, sy := source(dx, dy)
			dst.SetRGBA(dx, dy, src.RGBAAt(sx, sy))
		}
	}
	return dst
}
