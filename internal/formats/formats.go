package formats

// Family groups formats by the pipeline that handles them.
type Family string

const (
	// FamilyRaster covers still-image formats handled by the codec pipeline.
	FamilyRaster Family = "raster"
	// FamilyDocument covers paged documents rendered one image per page.
	FamilyDocument Family = "document"
	// FamilyVideo covers video container formats handled by the engine.
	FamilyVideo Family = "video"
	// FamilyAudio covers audio-only formats handled by the engine.
	FamilyAudio Family = "audio"
	// FamilyOther represents an unknown or unsupported format.
	FamilyOther Family = "other"
)

// RasterFormats maps raster format names to whether they are supported
// as a decode source. Formats the encoder can also produce are listed
// in RasterEncodeTargets.
var RasterFormats = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
	"tiff": true,
	"tif":  true,
	"heic": true,
	"heif": true,
	"avif": true,
}

// RasterEncodeTargets maps raster format names the encoder can produce.
// The HEIF family decodes but does not encode (libheif encode support is
// not compiled into common libvips builds).
var RasterEncodeTargets = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
	"tiff": true,
	"tif":  true,
}

// DocumentFormats maps paged-document format names to support.
var DocumentFormats = map[string]bool{
	"pdf": true,
}

// VideoFormats maps video container names to support, as source or target.
var VideoFormats = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mov":  true,
	"mkv":  true,
	"avi":  true,
	"flv":  true,
	"wmv":  true,
	"m4v":  true,
	"3gp":  true,
	"mpeg": true,
	"mpg":  true,
	"ts":   true,
	"gif":  true,
	"hevc": true,
	"divx": true,
}

// AudioFormats maps audio format names to support as an engine target.
var AudioFormats = map[string]bool{
	"mp3":  true,
	"aac":  true,
	"ogg":  true,
	"opus": true,
	"wav":  true,
	"flac": true,
	"m4a":  true,
	"wma":  true,
}

// MimeTypes maps format names to their MIME types.
var MimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"heic": "image/heic",
	"heif": "image/heif",
	"avif": "image/avif",

	"pdf": "application/pdf",

	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"flv":  "video/x-flv",
	"wmv":  "video/x-ms-wmv",
	"m4v":  "video/x-m4v",
	"3gp":  "video/3gpp",
	"mpeg": "video/mpeg",
	"mpg":  "video/mpeg",
	"ts":   "video/mp2t",

	"mp3":  "audio/mpeg",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
	"opus": "audio/opus",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"wma":  "audio/x-ms-wma",
}

// GetFamily returns the pipeline family for a format name.
// Names are lowercase without a leading dot (e.g. "png").
// A name listed in more than one family resolves raster > document >
// video > audio, matching how sources are interpreted.
func GetFamily(format string) Family {
	if RasterFormats[format] {
		return FamilyRaster
	}
	if DocumentFormats[format] {
		return FamilyDocument
	}
	if VideoFormats[format] {
		return FamilyVideo
	}
	if AudioFormats[format] {
		return FamilyAudio
	}
	return FamilyOther
}

// GetMimeType returns the MIME type for a format name.
// Returns "application/octet-stream" if the format is not recognized.
func GetMimeType(format string) string {
	if mime, ok := MimeTypes[format]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsSupported returns true if the format belongs to any pipeline family.
func IsSupported(format string) bool {
	return GetFamily(format) != FamilyOther
}
