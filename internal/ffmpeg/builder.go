package ffmpeg

import (
	"strconv"
)

// Default executables, looked up in PATH.
const (
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
	DefaultLogLevel    = "error"

	visuallyLosslessCRF = 17
)

// probeEntries are the stream fields requested from ffprobe.
const probeEntries = "stream=codec_name,width,height,pix_fmt,r_frame_rate,avg_frame_rate"

// Base returns the ffmpeg arguments shared by every invocation.
func Base(path, logLevel string) []string {
	if path == "" {
		path = DefaultFFmpegPath
	}
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}
	return []string{path, "-hide_banner", "-loglevel", "level+" + logLevel}
}

// BuildProbeArgs builds the ffprobe command reading the first video stream
// as JSON.
func BuildProbeArgs(p *ProbeParams) []string {
	path := p.FFprobePath
	if path == "" {
		path = DefaultFFprobePath
	}
	return []string{
		path,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", probeEntries,
		"-of", "json",
		p.InputPath,
	}
}

// BuildDecodeArgs builds the ffmpeg command decoding the first video stream
// of the input to raw RGB24 on stdout.
func BuildDecodeArgs(p *DecodeParams) []string {
	args := Base(p.FFmpegPath, p.LogLevel)
	args = append(args,
		"-nostdin",
		"-i", p.InputPath,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	return args
}

// BuildEncodeArgs builds the ffmpeg command encoding raw RGB24 from stdin
// into the output file.
func BuildEncodeArgs(p *EncodeParams) []string {
	args := Base(p.FFmpegPath, p.LogLevel)

	// Input configuration
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", strconv.Itoa(p.Width)+"x"+strconv.Itoa(p.Height),
		"-r", FormatRate(p.FrameRate),
		"-i", "pipe:0",
		"-an",
	)

	// Encoder
	if p.Codec != "" {
		args = append(args, "-c:v", p.Codec)
	}
	if p.PixelFormat != "" {
		args = append(args, "-pix_fmt", p.PixelFormat)
	}
	args = append(args, QualityArgs(p.Codec, p.Quality)...)

	// Output
	if p.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	return append(args, p.OutputPath)
}

// QualityArgs maps a 0-10 quality onto the codec's rate control. x264 and
// x265 scale 10..0 onto CRF 17..51; CRF 0 would switch x264 to lossless
// High 4:4:4, which many players cannot decode. VPx scales onto CRF 0..51
// in constant quality mode, everything else onto qscale 1..31.
func QualityArgs(codec string, quality int) []string {
	q := float64(min(max(quality, 0), 10))

	switch codec {
	case "h264", "hevc", "libx264", "libx265":
		return []string{"-crf", strconv.Itoa(visuallyLosslessCRF + int((1-q/10)*(51-visuallyLosslessCRF)))}
	case "vp8", "vp9", "libvpx", "libvpx-vp9":
		return []string{"-crf", strconv.Itoa(int((1 - q/10) * 51)), "-b:v", "0"}
	default:
		return []string{"-qscale:v", strconv.Itoa(int((1-q/10)*30) + 1)}
	}
}

// FormatRate renders a frame rate for the -r option.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
