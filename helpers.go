package cleanscore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const previewQuality = 85

// EncodeBase64 encodes bytes to base64 string.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeDataURL creates a data: URI from bytes and MIME type.
func EncodeDataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// Preview re-encodes the image as a JPEG whose longest side is at most
// maxSide pixels. Smaller images keep their size.
func (d *DecodedImage) Preview(maxSide int) (ImageInput, error) {
	if d == nil || d.Image == nil {
		return ImageInput{}, fmt.Errorf("no image to encode")
	}

	var src image.Image = d.Image
	b := d.Image.Bounds()
	if w, h := b.Dx(), b.Dy(); maxSide > 0 && (w > maxSide || h > maxSide) {
		dw, dh := maxSide, h*maxSide/w
		if h > w {
			dw, dh = w*maxSide/h, maxSide
		}
		dst := image.NewRGBA(image.Rect(0, 0, max(dw, 1), max(dh, 1)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), d.Image, b, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: previewQuality}); err != nil {
		return ImageInput{}, fmt.Errorf("encode preview: %w", err)
	}
	data := buf.Bytes()
	return ImageInput{
		URL:      EncodeDataURL(data, "image/jpeg"),
		MIMEType: "image/jpeg",
		Data:     data,
	}, nil
}
