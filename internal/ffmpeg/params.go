package ffmpeg

// DecodeParams describes a decoder process that turns one input file into
// raw RGB24 frames on stdout.
type DecodeParams struct {
	FFmpegPath string
	LogLevel   string // ffmpeg -loglevel value, without the "level+" prefix
	InputPath  string
}

// EncodeParams describes an encoder process that reads raw RGB24 frames on
// stdin and writes one output file.
type EncodeParams struct {
	FFmpegPath string
	LogLevel   string

	// Input frames
	Width     int
	Height    int
	FrameRate float64

	// Encoder Configuration
	Codec       string // h264, hevc, vp9, mpeg4, ...
	PixelFormat string // yuv420p; empty keeps the encoder default
	Quality     int    // 0-10, 10 being the best

	// Output
	OutputPath string
	Overwrite  bool
}

// ProbeParams describes an ffprobe invocation for the first video stream.
type ProbeParams struct {
	FFprobePath string
	InputPath   string
}
