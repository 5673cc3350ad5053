package engine

import "fmt"

// targetSpec describes how one output format is produced: the codec
// arguments placed between input and output, whether the video stream is
// stripped, the real container extension when it differs from the target
// name, and whether the GIF palette pipeline applies.
type targetSpec struct {
	audioOnly bool
	args      []string
	container string
	twoPass   bool
}

// targetSpecs is the full mapping from target format to engine
// arguments. Video tuples favor fast presets and "good enough" quality
// over maximum fidelity: jobs run single-pass on caller CPU time.
var targetSpecs = map[string]targetSpec{
	// Audio-only targets: video stream stripped, codec/bitrate pair
	// specific to the extension
	"mp3":  {audioOnly: true, args: []string{"-vn", "-c:a", "libmp3lame", "-b:a", "192k"}},
	"aac":  {audioOnly: true, args: []string{"-vn", "-c:a", "aac", "-b:a", "192k"}},
	"m4a":  {audioOnly: true, args: []string{"-vn", "-c:a", "aac", "-b:a", "192k"}},
	"ogg":  {audioOnly: true, args: []string{"-vn", "-c:a", "libvorbis", "-q:a", "5"}},
	"opus": {audioOnly: true, args: []string{"-vn", "-c:a", "libopus", "-b:a", "128k"}},
	"wav":  {audioOnly: true, args: []string{"-vn", "-c:a", "pcm_s16le"}},
	"flac": {audioOnly: true, args: []string{"-vn", "-c:a", "flac"}},
	"wma":  {audioOnly: true, args: []string{"-vn", "-c:a", "wmav2", "-b:a", "160k"}},

	// Video targets
	"mp4":  {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart"}},
	"m4v":  {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "128k", "-movflags", "+faststart"}},
	"mov":  {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "128k"}},
	"mkv":  {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "128k"}},
	"webm": {args: []string{"-c:v", "libvpx-vp9", "-deadline", "realtime", "-cpu-used", "5", "-crf", "34", "-b:v", "0", "-c:a", "libopus", "-b:a", "96k"}},
	"avi":  {args: []string{"-c:v", "mpeg4", "-q:v", "5", "-c:a", "libmp3lame", "-b:a", "128k"}},
	"flv":  {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "25", "-c:a", "aac", "-b:a", "96k", "-ar", "44100"}},
	"wmv":  {args: []string{"-c:v", "wmv2", "-b:v", "2M", "-c:a", "wmav2", "-b:a", "128k"}},
	"3gp":  {args: []string{"-c:v", "mpeg4", "-b:v", "800k", "-c:a", "aac", "-b:a", "64k", "-ar", "22050"}},
	"mpg":  {args: []string{"-c:v", "mpeg2video", "-q:v", "5", "-c:a", "mp2", "-b:a", "192k"}},
	"mpeg": {args: []string{"-c:v", "mpeg2video", "-q:v", "5", "-c:a", "mp2", "-b:a", "192k"}},
	"ts":   {args: []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23", "-c:a", "aac", "-b:a", "128k", "-f", "mpegts"}},

	// Targets whose real container differs from their nominal name:
	// HEVC ships in an MP4 container, DivX in a legacy AVI container
	"hevc": {args: []string{"-c:v", "libx265", "-preset", "fast", "-crf", "28", "-tag:v", "hvc1", "-c:a", "aac", "-b:a", "128k"}, container: "mp4"},
	"divx": {args: []string{"-c:v", "mpeg4", "-vtag", "DX50", "-q:v", "5", "-c:a", "libmp3lame", "-b:a", "128k"}, container: "avi"},

	// GIF is a hard two-pass pipeline (palettegen then paletteuse);
	// single-pass encodes show visibly worse color banding
	"gif": {twoPass: true},
}

// mp4Family containers carry codecs compatible enough that repackaging
// with stream copy is worth attempting before a re-encode.
var mp4Family = map[string]bool{
	"mp4": true,
	"mov": true,
	"m4v": true,
	"mkv": true,
}

// GIF palette pipeline tunables.
const (
	gifFrameRate = 12
	gifMaxWidth  = 480
)

// scaleFilter bounds output resolution to maxDim on the wider axis while
// keeping dimensions divisible by two, as most encoders require.
func scaleFilter(maxDim int) string {
	return fmt.Sprintf("scale=min(%d\\,iw):-2", maxDim)
}

// buildArgs assembles the full ffmpeg argument list for a re-encode of
// input into output. The spec must exist in targetSpecs.
func buildArgs(spec targetSpec, input, output string, maxDim int) []string {
	args := []string{"-y", "-i", input}
	if !spec.audioOnly {
		args = append(args, "-vf", scaleFilter(maxDim))
	}
	args = append(args, spec.args...)
	return append(args, output)
}

// buildCopyArgs assembles the stream-copy repackaging argument list: no
// re-encode, an order-of-magnitude faster when codecs are compatible.
func buildCopyArgs(input, output string) []string {
	return []string{"-y", "-i", input, "-c", "copy", "-movflags", "+faststart", output}
}

// buildPaletteArgs assembles pass one of the GIF pipeline: generate a
// reduced palette at a capped frame rate and scaled width.
func buildPaletteArgs(input, palette string) []string {
	filter := fmt.Sprintf("fps=%d,scale=min(%d\\,iw):-2:flags=lanczos,palettegen", gifFrameRate, gifMaxWidth)
	return []string{"-y", "-i", input, "-vf", filter, palette}
}

// buildPaletteUseArgs assembles pass two: re-encode referencing the
// palette from pass one.
func buildPaletteUseArgs(input, palette, output string) []string {
	filter := fmt.Sprintf("fps=%d,scale=min(%d\\,iw):-2:flags=lanczos[x];[x][1:v]paletteuse", gifFrameRate, gifMaxWidth)
	return []string{"-y", "-i", input, "-i", palette, "-filter_complex", filter, output}
}
