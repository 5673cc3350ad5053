package rastercodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"media-convert/internal/dispatch"
	"media-convert/internal/pixel"
)

// encodePNG builds a small test image payload.
func encodePNG(t *testing.T, width, height int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 37), G: uint8(y * 53), B: 90, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestConvert(t *testing.T) {
	codec := New()
	payload := encodePNG(t, 8, 6, 255)

	tests := []struct {
		name   string
		target string
	}{
		{name: "png to jpg", target: "jpg"},
		{name: "png to jpeg alias", target: "jpeg"},
		{name: "png to gif", target: "gif"},
		{name: "png to bmp", target: "bmp"},
		{name: "png to tiff", target: "tiff"},
		{name: "png to webp", target: "webp"},
		{name: "png to png", target: "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := codec.Convert("png", tt.target, 0, payload)
			if err != nil {
				t.Fatalf("Convert(png, %s): %v", tt.target, err)
			}
			if len(out) == 0 {
				t.Fatal("Convert produced an empty payload")
			}

			// The output must decode back to the same dimensions
			buf, err := codec.Decode(tt.target, out)
			if err != nil {
				t.Fatalf("decoding converted output: %v", err)
			}
			if buf.Width != 8 || buf.Height != 6 {
				t.Errorf("converted dimensions = %dx%d, want 8x6", buf.Width, buf.Height)
			}
		})
	}
}

func TestDecodeFailure(t *testing.T) {
	codec := New()

	_, err := codec.Decode("png", []byte("definitely not an image"))
	if err == nil {
		t.Fatal("Decode of garbage succeeded")
	}
	tagged, ok := err.(*dispatch.Error)
	if !ok {
		t.Fatalf("Decode error is not tagged: %v", err)
	}
	if tagged.Kind != dispatch.KindDecodeFailed {
		t.Errorf("ErrKind = %s, want %s", tagged.Kind, dispatch.KindDecodeFailed)
	}
}

func TestEncodeUnknownTarget(t *testing.T) {
	buf, err := pixel.New(2, 2)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}

	_, err = Encode(buf, "xcf", 0)
	if err == nil {
		t.Fatal("Encode to unknown target succeeded")
	}
	tagged, ok := err.(*dispatch.Error)
	if !ok {
		t.Fatalf("Encode error is not tagged: %v", err)
	}
	if tagged.Kind != dispatch.KindEncodeFailed {
		t.Errorf("ErrKind = %s, want %s", tagged.Kind, dispatch.KindEncodeFailed)
	}
}

func TestEncodeInvalidBuffer(t *testing.T) {
	buf := &pixel.Buffer{Width: 4, Height: 4, Data: []byte{1, 2, 3}}
	if _, err := Encode(buf, "png", 0); err == nil {
		t.Fatal("Encode of an invalid buffer succeeded")
	}
}

func TestJPEGFlattensTransparency(t *testing.T) {
	codec := New()
	payload := encodePNG(t, 4, 4, 0) // fully transparent source

	out, err := codec.Convert("png", "jpg", 0.9, payload)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	buf, err := codec.Decode("jpg", out)
	if err != nil {
		t.Fatalf("decoding JPEG output: %v", err)
	}
	// Transparent pixels flatten onto white, not black
	if buf.Data[0] < 200 {
		t.Errorf("flattened pixel channel = %d, want near white", buf.Data[0])
	}
}

func TestQualityAffectsLossyOutput(t *testing.T) {
	codec := New()
	payload := encodePNG(t, 64, 64, 255)

	high, err := codec.Convert("png", "jpg", 0.95, payload)
	if err != nil {
		t.Fatalf("Convert at high quality: %v", err)
	}
	low, err := codec.Convert("png", "jpg", 0.2, payload)
	if err != nil {
		t.Fatalf("Convert at low quality: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("low quality output (%d bytes) not smaller than high quality (%d bytes)", len(low), len(high))
	}
}

func TestIsLossless(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{format: "png", want: true},
		{format: "bmp", want: true},
		{format: "tiff", want: true},
		{format: "tif", want: true},
		{format: "gif", want: true},
		{format: "jpg", want: false},
		{format: "jpeg", want: false},
		{format: "webp", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := IsLossless(tt.format); got != tt.want {
				t.Errorf("IsLossless(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
