package utils

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// ResizeImage resizes an image read from reader to the given
// dimensions, encoded as PNG. A zero width or height is derived from
// the source aspect ratio. Fit modes: "cover" fills and crops, "fill"
// stretches, anything else fits within the box.
func ResizeImage(reader io.Reader, width, height int, fit string) ([]byte, error) {
	src, err := imaging.Decode(reader)
	if err != nil {
		return nil, err
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	targetWidth := width
	targetHeight := height

	if targetWidth == 0 {
		targetWidth = int(float64(srcWidth) * float64(targetHeight) / float64(srcHeight))
	} else if targetHeight == 0 {
		targetHeight = int(float64(srcHeight) * float64(targetWidth) / float64(srcWidth))
	}

	var resized *image.NRGBA
	switch fit {
	case "cover":
		resized = imaging.Fill(src, targetWidth, targetHeight, imaging.Center, imaging.Lanczos)
	case "fill":
		resized = imaging.Resize(src, targetWidth, targetHeight, imaging.Lanczos)
	default: // "contain"
		resized = imaging.Fit(src, targetWidth, targetHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
