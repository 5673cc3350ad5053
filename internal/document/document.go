package document

import (
	"bytes"
	"image"
	"sync"

	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
	"media-convert/internal/pixel"
	"media-convert/internal/rastercodec"

	"github.com/davidbyttow/govips/v2/vips"
)

// renderDensity renders pages at 2x the nominal 72 DPI document scale,
// balancing legibility against output size.
const renderDensity = 144

// alphaLessTargets cannot represent transparency, so pages are flattened
// onto white before export (transparent regions would otherwise render
// black).
var alphaLessTargets = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"bmp":  true,
}

// Renderer rasterizes paged documents into one image per page.
type Renderer struct {
	once    sync.Once
	initErr error
}

// NewRenderer creates a document renderer. libvips is initialized on
// first use.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPages renders the document into targetFormat images, ascending
// by page number. page == 0 renders every page; page >= 1 renders that
// single page. Implements dispatch.DocumentRenderer.
func (r *Renderer) RenderPages(payload []byte, targetFormat string, page int) ([][]byte, error) {
	r.once.Do(func() {
		r.initErr = rastercodec.InitVips()
	})
	if r.initErr != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "document renderer unavailable: %v", r.initErr)
	}

	pageCount, err := r.pageCount(payload)
	if err != nil {
		return nil, err
	}

	first, last := 0, pageCount-1
	if page >= 1 {
		if page > pageCount {
			return nil, dispatch.NewError(dispatch.KindDecodeFailed, "page %d out of range: document has %d pages", page, pageCount)
		}
		first, last = page-1, page-1
	}

	payloads := make([][]byte, 0, last-first+1)
	for idx := first; idx <= last; idx++ {
		rendered, err := r.renderPage(payload, idx, targetFormat)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, rendered)
	}

	logging.Debug("rendered %d document pages to %s", len(payloads), targetFormat)
	return payloads, nil
}

// pageCount opens the document once to read its page total. The vips
// ref is released on all paths.
func (r *Renderer) pageCount(payload []byte) (int, error) {
	params := vips.NewImportParams()
	params.Density.Set(renderDensity)

	ref, err := vips.LoadImageFromBuffer(payload, params)
	if err != nil {
		return 0, dispatch.NewError(dispatch.KindDecodeFailed, "opening document: %v", err)
	}
	defer ref.Close()

	count := ref.Pages()
	if count < 1 {
		count = 1
	}
	return count, nil
}

// renderPage rasterizes one zero-based page into the target encoding.
func (r *Renderer) renderPage(payload []byte, idx int, targetFormat string) ([]byte, error) {
	params := vips.NewImportParams()
	params.Density.Set(renderDensity)
	params.Page.Set(idx)
	params.NumPages.Set(1)

	ref, err := vips.LoadImageFromBuffer(payload, params)
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "rendering page %d: %v", idx+1, err)
	}
	defer ref.Close()

	if alphaLessTargets[targetFormat] {
		if err := ref.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return nil, dispatch.NewError(dispatch.KindDecodeFailed, "flattening page %d: %v", idx+1, err)
		}
	}

	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "exporting page %d: %v", idx+1, err)
	}

	if targetFormat == "png" {
		return pngBytes, nil
	}

	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindDecodeFailed, "decoding rendered page %d: %v", idx+1, err)
	}
	return rastercodec.Encode(pixel.FromImage(img), targetFormat, rastercodec.DefaultQuality)
}
