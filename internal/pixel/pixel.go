package pixel

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Buffer is the common in-memory pixel representation exchanged between
// decode and encode adapters: row-major RGBA, 8-bit non-premultiplied
// channels, alpha last. Invariant: len(Data) == Width*Height*4.
type Buffer struct {
	Width  int
	Height int
	Data   []byte
}

// New allocates a zeroed buffer for the given dimensions.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*4),
	}, nil
}

// FromImage converts any image.Image into a pixel buffer.
// NRGBA sources are copied without per-pixel conversion.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == width*4 {
		data := make([]byte, width*height*4)
		copy(data, nrgba.Pix[:width*height*4])
		return &Buffer{Width: width, Height: height, Data: data}
	}

	// imaging.Clone always produces a tightly-packed NRGBA image
	cloned := imaging.Clone(img)
	data := make([]byte, width*height*4)
	copy(data, cloned.Pix[:width*height*4])
	return &Buffer{Width: width, Height: height, Data: data}
}

// ToImage wraps the buffer as an *image.NRGBA sharing the same backing data.
func (b *Buffer) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Width: b.Width, Height: b.Height, Data: data}
}

// Valid reports whether the buffer satisfies its size invariant.
func (b *Buffer) Valid() bool {
	return b.Width > 0 && b.Height > 0 && len(b.Data) == b.Width*b.Height*4
}

// HasTransparency scans every alpha sample. A single sample below 255
// anywhere classifies the whole image as having transparency.
func (b *Buffer) HasTransparency() bool {
	for i := 3; i < len(b.Data); i += 4 {
		if b.Data[i] != 0xff {
			return true
		}
	}
	return false
}

// Quantize reduces each color channel to the given number of bits (2-4)
// in place, preserving the alpha channel byte-for-byte. Values outside
// the 2-4 range are clamped.
func (b *Buffer) Quantize(bits int) {
	if bits < 2 {
		bits = 2
	}
	if bits > 4 {
		bits = 4
	}

	// Quantized value is re-expanded across the full 0-255 range so the
	// brightest level stays white rather than clipping dark.
	levels := (1 << bits) - 1
	var table [256]byte
	for v := 0; v < 256; v++ {
		q := (v*levels + 127) / 255
		table[v] = byte(q * 255 / levels)
	}

	for i := 0; i < len(b.Data); i += 4 {
		b.Data[i] = table[b.Data[i]]
		b.Data[i+1] = table[b.Data[i+1]]
		b.Data[i+2] = table[b.Data[i+2]]
	}
}

// DownscaleToCap returns a buffer whose largest dimension does not exceed
// max, resizing with Lanczos resampling and preserving aspect ratio.
// Buffers already within the cap are returned unchanged.
func (b *Buffer) DownscaleToCap(max int) *Buffer {
	if max <= 0 || (b.Width <= max && b.Height <= max) {
		return b
	}

	targetWidth, targetHeight := b.Width, b.Height
	if b.Width >= b.Height {
		targetWidth = max
		targetHeight = b.Height * max / b.Width
	} else {
		targetHeight = max
		targetWidth = b.Width * max / b.Height
	}
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	resized := imaging.Resize(b.ToImage(), targetWidth, targetHeight, imaging.Lanczos)
	return FromImage(resized)
}

// CompositeOnWhite returns a copy with all pixels blended over opaque
// white, for encoders that cannot represent alpha.
func (b *Buffer) CompositeOnWhite() *Buffer {
	out := b.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		a := int(out.Data[i+3])
		if a == 0xff {
			continue
		}
		out.Data[i] = byte((int(out.Data[i])*a + 255*(255-a)) / 255)
		out.Data[i+1] = byte((int(out.Data[i+1])*a + 255*(255-a)) / 255)
		out.Data[i+2] = byte((int(out.Data[i+2])*a + 255*(255-a)) / 255)
		out.Data[i+3] = 0xff
	}
	return out
}
