package rastercodec

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"media-convert/internal/dispatch"
	"media-convert/internal/pixel"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// WebP decode support; bmp and tiff register via their named imports
	_ "golang.org/x/image/webp"
)

// DefaultQuality is the lossy-encode quality used when a job carries no hint.
const DefaultQuality = 0.85

// heifFamily routes through the dedicated libvips decoder because the
// stdlib image decoders do not understand that family.
var heifFamily = map[string]bool{
	"heic": true,
	"heif": true,
	"avif": true,
}

// losslessTargets ignore the quality hint.
var losslessTargets = map[string]bool{
	"png":  true,
	"bmp":  true,
	"tiff": true,
	"tif":  true,
	"gif":  true,
}

// Codec converts between raster encodings via the common pixel buffer.
type Codec struct {
	heif *heifDecoder
}

// New creates a raster codec. The HEIF decoder is loaded lazily on first
// use and cached for the codec's lifetime.
func New() *Codec {
	return &Codec{heif: &heifDecoder{}}
}

// Convert decodes the payload from sourceFormat and re-encodes it as
// targetFormat. Implements dispatch.RasterConverter.
func (c *Codec) Convert(sourceFormat, targetFormat string, quality float64, payload []byte) ([]byte, error) {
	buf, err := c.Decode(sourceFormat, payload)
	if err != nil {
		return nil, err
	}
	return Encode(buf, targetFormat, quality)
}

// Decode parses a binary payload into a pixel buffer. The returned
// error is always tagged DecodeFailed.
func (c *Codec) Decode(format string, payload []byte) (*pixel.Buffer, error) {
	if heifFamily[format] {
		return c.heif.decode(payload)
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "decoding %s image: %v", format, err)
	}
	return pixel.FromImage(img), nil
}

// Encode serializes a pixel buffer into the target encoding. Lossy
// targets honor the quality hint (default 0.85); lossless targets ignore
// it. Either a complete valid payload or a tagged EncodeFailed error is
// returned, never partial output.
func Encode(buf *pixel.Buffer, format string, quality float64) ([]byte, error) {
	if !buf.Valid() {
		return nil, dispatch.NewError(dispatch.KindEncodeFailed, "invalid pixel buffer %dx%d with %d bytes", buf.Width, buf.Height, len(buf.Data))
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}

	var out bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&out, buf.ToImage())

	case "jpg", "jpeg":
		// JPEG has no alpha channel; flatten first so transparent
		// regions do not come out black
		flat := buf.CompositeOnWhite()
		err = jpeg.Encode(&out, flat.ToImage(), &jpeg.Options{Quality: int(quality * 100)})

	case "gif":
		err = gif.Encode(&out, buf.ToImage(), &gif.Options{NumColors: 256})

	case "bmp":
		flat := buf.CompositeOnWhite()
		err = bmp.Encode(&out, flat.ToImage())

	case "tiff", "tif":
		err = tiff.Encode(&out, buf.ToImage(), &tiff.Options{Compression: tiff.Deflate})

	case "webp":
		err = webp.Encode(&out, buf.ToImage(), &webp.Options{Quality: float32(quality * 100)})

	default:
		return nil, dispatch.NewError(dispatch.KindEncodeFailed, "no encoder for target format %q", format)
	}

	if err != nil {
		return nil, dispatch.NewError(dispatch.KindEncodeFailed, "encoding %s: %v", format, err)
	}
	return out.Bytes(), nil
}

// IsLossless reports whether a target encoding ignores the quality hint.
func IsLossless(format string) bool {
	return losslessTargets[format]
}
