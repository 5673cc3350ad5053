package recompress

import (
	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
	"media-convert/internal/pixel"
	"media-convert/internal/rastercodec"
)

// Config tunes the size-reduction policy.
type Config struct {
	// MaxDimension caps input resolution before any strategy runs; most
	// size reduction for oversized inputs comes from resolution, not
	// re-encoding.
	MaxDimension int
	// AcceptRatio is the fraction of the original size a WebP candidate
	// must beat to be accepted (guards against the alternate codec
	// producing a larger file for small or already-compressed inputs).
	AcceptRatio float64
}

// DefaultConfig returns the tuned recompression defaults.
func DefaultConfig() Config {
	return Config{
		MaxDimension: 2048,
		AcceptRatio:  0.95,
	}
}

// defaultQuality is the requested level assumed when a job carries no hint.
const defaultQuality = 0.75

// Recompressor reduces the byte size of a raster image while keeping its
// original encoding, trying an ordered sequence of strategies and
// returning the first qualifying result.
type Recompressor struct {
	cfg   Config
	codec *rastercodec.Codec
}

// New creates a recompressor sharing the given codec's decoders.
func New(cfg Config, codec *rastercodec.Codec) *Recompressor {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultConfig().MaxDimension
	}
	if cfg.AcceptRatio <= 0 || cfg.AcceptRatio > 1 {
		cfg.AcceptRatio = DefaultConfig().AcceptRatio
	}
	return &Recompressor{cfg: cfg, codec: codec}
}

// Recompress shrinks the payload within its own format. Implements
// dispatch.Recompressor.
//
// Strategy order, first qualifying result wins:
//  1. opaque images: lossy re-encode through JPEG, re-wrapped into the
//     original encoding, accepted when smaller than the original
//  2. WebP at a lower derived quality, accepted only below
//     AcceptRatio x original size
//  3. channel quantization with the alpha channel untouched, re-encoded
//     losslessly in the original format; always succeeds
func (r *Recompressor) Recompress(format string, quality float64, payload []byte) ([]byte, error) {
	if quality <= 0 || quality > 1 {
		quality = defaultQuality
	}

	buf, err := r.codec.Decode(format, payload)
	if err != nil {
		return nil, err
	}

	buf = buf.DownscaleToCap(r.cfg.MaxDimension)
	originalSize := len(payload)

	if !buf.HasTransparency() {
		if out, err := r.rewrap(buf, "jpg", format, quality); err == nil && len(out) < originalSize {
			logging.Debug("recompress %s: JPEG intermediate won (%d -> %d bytes)", format, originalSize, len(out))
			return out, nil
		}
	}

	webpQuality := quality - 0.15
	if webpQuality < 0.3 {
		webpQuality = 0.3
	}
	if out, err := r.rewrap(buf, "webp", format, webpQuality); err == nil &&
		float64(len(out)) < r.cfg.AcceptRatio*float64(originalSize) {
		logging.Debug("recompress %s: WebP intermediate won (%d -> %d bytes)", format, originalSize, len(out))
		return out, nil
	}

	// Quantization is the only path guaranteed to preserve transparency
	// exactly
	quantized := buf.Clone()
	quantized.Quantize(quantizeBits(quality))
	out, err := rastercodec.Encode(quantized, format, 0)
	if err != nil {
		return nil, err
	}
	logging.Debug("recompress %s: quantization fallback (%d -> %d bytes)", format, originalSize, len(out))
	return out, nil
}

// rewrap re-encodes the buffer through a lossy intermediate encoding and
// wraps the result back into the original format. When the original
// format is the intermediate, the intermediate bytes are the result.
func (r *Recompressor) rewrap(buf *pixel.Buffer, intermediate, original string, quality float64) ([]byte, error) {
	encoded, err := rastercodec.Encode(buf, intermediate, quality)
	if err != nil {
		return nil, err
	}
	if sameFormat(intermediate, original) {
		return encoded, nil
	}

	decoded, err := r.codec.Decode(intermediate, encoded)
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindEncodeFailed, "re-wrapping %s intermediate: %v", intermediate, err)
	}
	return rastercodec.Encode(decoded, original, 0)
}

// quantizeBits maps the requested level to quantization aggressiveness.
func quantizeBits(quality float64) int {
	switch {
	case quality <= 0.4:
		return 2
	case quality <= 0.7:
		return 3
	default:
		return 4
	}
}

func sameFormat(a, b string) bool {
	norm := func(f string) string {
		switch f {
		case "jpeg":
			return "jpg"
		case "tif":
			return "tiff"
		default:
			return f
		}
	}
	return norm(a) == norm(b)
}
