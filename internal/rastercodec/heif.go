package rastercodec

import (
	"bytes"
	"image"
	"sync"

	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
	"media-convert/internal/pixel"

	"github.com/davidbyttow/govips/v2/vips"
)

// heifDecoder decodes the HEIF family (heic/heif/avif) through libvips.
// Initialization happens once on first use and is cached for the
// decoder's lifetime.
type heifDecoder struct {
	once    sync.Once
	initErr error
}

func (d *heifDecoder) decode(payload []byte) (*pixel.Buffer, error) {
	d.once.Do(func() {
		d.initErr = InitVips()
	})
	if d.initErr != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "HEIF decoder unavailable: %v", d.initErr)
	}
	if !IsVipsAvailable() {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "HEIF decoder unavailable: libvips not initialized")
	}

	ref, err := vips.LoadImageFromBuffer(payload, vips.NewImportParams())
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "vips failed to load HEIF image: %v", err)
	}
	defer ref.Close()

	logging.Debug("vips loaded HEIF image: %dx%d", ref.Width(), ref.Height())

	// Bridge through PNG so the pixel conversion stays in one place
	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "vips export failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "decoding vips output: %v", err)
	}
	return pixel.FromImage(img), nil
}
