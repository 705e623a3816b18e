package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"video-search/internal/app/model"
)

// FFmpegDecoder decodes through the ffprobe and ffmpeg binaries.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpegDecoder returns a decoder using the given binaries, or the ones on PATH when empty.
func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Probe reads the video stream metadata.
func (d *FFmpegDecoder) Probe(ctx context.Context, videoPath string) (model.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, d.FFprobePath, "-v", "error", "-print_format", "json",
		"-show_streams", "-show_format", videoPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return model.VideoMetadata{}, fmt.Errorf("ffprobe error: %v, stderr: %s", err, stderr.String())
	}
	return ParseProbeOutput(output)
}

// ParseProbeOutput converts ffprobe JSON into VideoMetadata.
// The frame count falls back to duration*fps when the container does not report nb_frames.
func ParseProbeOutput(output []byte) (model.VideoMetadata, error) {
	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return model.VideoMetadata{}, fmt.Errorf("invalid ffprobe output: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		fps, err := ParseFrameRate(stream.AvgFrameRate)
		if err != nil || fps == 0 {
			fps, err = ParseFrameRate(stream.RFrameRate)
			if err != nil {
				return model.VideoMetadata{}, err
			}
		}
		if fps <= 0 {
			return model.VideoMetadata{}, fmt.Errorf("video stream has no frame rate")
		}
		if stream.Width <= 0 || stream.Height <= 0 {
			return model.VideoMetadata{}, fmt.Errorf("video stream has invalid size %dx%d", stream.Width, stream.Height)
		}

		total, err := strconv.Atoi(stream.NbFrames)
		if err != nil || total <= 0 {
			duration, derr := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
			if derr != nil {
				return model.VideoMetadata{}, fmt.Errorf("cannot determine frame count: %w", derr)
			}
			total = int(math.Round(duration * fps))
		}

		// ffmpeg autorotates decoded frames, so quarter turns swap the piped frame size
		width, height := stream.Width, stream.Height
		if quarterTurn(streamRotation(stream.Tags.Rotate, stream.SideDataList)) {
			width, height = height, width
		}

		return model.VideoMetadata{
			FPS:         fps,
			Width:       width,
			Height:      height,
			TotalFrames: total,
		}, nil
	}
	return model.VideoMetadata{}, fmt.Errorf("no video stream found")
}

// streamRotation prefers the display matrix rotation over the legacy rotate tag.
func streamRotation(rotateTag string, sideData []model.FFProbeSideData) int {
	for _, sd := range sideData {
		if sd.Rotation != 0 {
			return int(math.Round(sd.Rotation))
		}
	}
	if r, err := strconv.Atoi(strings.TrimSpace(rotateTag)); err == nil {
		return r
	}
	return 0
}

func quarterTurn(degrees int) bool {
	d := ((degrees % 360) + 360) % 360
	return d == 90 || d == 270
}

// ParseFrameRate parses ffprobe rates such as "30000/1001" or "25".
func ParseFrameRate(rate string) (float64, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return 0, fmt.Errorf("empty frame rate")
	}
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

// FrameTimestampMs is the presentation time of frame index at fps, rounded down.
func FrameTimestampMs(index int, fps float64) int64 {
	if fps <= 0 {
		return 0
	}
	return int64(math.Floor(float64(index) * 1000 / fps))
}

// Open probes the video and starts an ffmpeg process piping raw rgb24 frames.
func (d *FFmpegDecoder) Open(ctx context.Context, videoPath string) (VideoStream, error) {
	meta, err := d.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.FFmpegPath, "-v", "error", "-i", videoPath,
		"-vsync", "0", "-f", "rawvideo", "-pix_fmt", "rgb24", "-")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stream := &ffmpegStream{
		cmd:  cmd,
		out:  stdout,
		meta: meta,
		buf:  make([]byte, meta.Width*meta.Height*3),
	}
	cmd.Stderr = &stream.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return stream, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr bytes.Buffer
	meta   model.VideoMetadata
	buf    []byte
	index  int
	closed bool
}

func (s *ffmpegStream) Metadata() model.VideoMetadata { return s.meta }

func (s *ffmpegStream) ReadFrame() (Frame, error) {
	if _, err := io.ReadFull(s.out, s.buf); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("frame %d: %w, stderr: %s", s.index, err, s.stderr.String())
	}

	img := image.NewRGBA(image.Rect(0, 0, s.meta.Width, s.meta.Height))
	for p, q := 0, 0; p < len(s.buf); p, q = p+3, q+4 {
		img.Pix[q] = s.buf[p]
		img.Pix[q+1] = s.buf[p+1]
		img.Pix[q+2] = s.buf[p+2]
		img.Pix[q+3] = 0xff
	}

	frame := Frame{
		Index:       s.index,
		TimestampMs: FrameTimestampMs(s.index, s.meta.FPS),
		Image:       img,
	}
	s.index++
	return frame, nil
}

// Close stops ffmpeg if frames remain unread and reaps the process.
func (s *ffmpegStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.out.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

// ExtractAudio writes the full audio track as 16-bit PCM WAV.
func (d *FFmpegDecoder) ExtractAudio(ctx context.Context, videoPath, wavPath string) error {
	cmd := exec.CommandContext(ctx, d.FFmpegPath, "-v", "error", "-y", "-i", videoPath,
		"-vn", "-acodec", "pcm_s16le", wavPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, stderr.String())
	}
	return nil
}
