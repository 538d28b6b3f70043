// ABOUTME: Video codec backed by ffmpeg and ffprobe subprocesses.
// ABOUTME: Frames travel as raw RGBA over pipes; output is MPEG-4 in an mp4 container.
package highlight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegCodec shells out to ffmpeg for decoding and encoding.
type FFmpegCodec struct {
	FFmpeg  string
	FFprobe string
}

// NewFFmpegCodec uses the binaries found on PATH.
func NewFFmpegCodec() *FFmpegCodec {
	return &FFmpegCodec{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideData []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
}

// Probe reads the first video stream's display size and frame rate.
func (c *FFmpegCodec) Probe(ctx context.Context, path string) (VideoInfo, error) {
	cmd := exec.CommandContext(ctx, c.FFprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate:stream_tags=rotate:stream_side_data=rotation",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(out)
}

// parseProbe decodes ffprobe JSON. ffmpeg autorotates on decode, so a
// quarter-turn rotation swaps the reported width and height.
func parseProbe(out []byte) (VideoInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return VideoInfo{}, errors.New("no video stream found")
	}

	s := probe.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}
	fps, err := parseRate(s.AvgFrameRate)
	if err != nil || fps <= 0 {
		fps, err = parseRate(s.RFrameRate)
		if err != nil {
			return VideoInfo{}, err
		}
	}

	rotation := 0
	if s.Tags.Rotate != "" {
		if v, err := strconv.Atoi(s.Tags.Rotate); err == nil {
			rotation = v
		}
	}
	for _, sd := range s.SideData {
		if sd.Rotation != 0 {
			rotation = int(sd.Rotation)
		}
	}

	width, height := s.Width, s.Height
	if quarterTurn(rotation) {
		width, height = height, width
	}
	return VideoInfo{Width: width, Height: height, FPS: fps}, nil
}

func quarterTurn(degrees int) bool {
	d := ((degrees % 360) + 360) % 360
	return d == 90 || d == 270
}

// parseRate converts ffprobe rates such as "30000/1001".
func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return n / d, nil
}

// Open starts decoding path to raw RGBA frames.
func (c *FFmpegCodec) Open(ctx context.Context, path string) (FrameReader, error) {
	info, err := c.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.FFmpeg,
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	r := &ffmpegReader{cmd: cmd, info: info}
	cmd.Stderr = &r.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	r.stdout = stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return r, nil
}

type ffmpegReader struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	info    VideoInfo
	done    bool
	waited  bool
	waitErr error
}

func (r *ffmpegReader) Info() VideoInfo {
	return r.info
}

func (r *ffmpegReader) Next() (*image.RGBA, error) {
	if r.done {
		return nil, io.EOF
	}
	frame := image.NewRGBA(image.Rect(0, 0, r.info.Width, r.info.Height))
	_, err := io.ReadFull(r.stdout, frame.Pix)
	switch {
	case err == nil:
		return frame, nil
	case errors.Is(err, io.EOF):
		r.done = true
		return nil, io.EOF
	default:
		r.done = true
		// stderr is only safe to read once the process has been reaped.
		_ = r.cmd.Process.Kill()
		_ = r.wait()
		return nil, fmt.Errorf("read frame: %w: %s", err, strings.TrimSpace(r.stderr.String()))
	}
}

func (r *ffmpegReader) wait() error {
	if !r.waited {
		r.waited = true
		r.waitErr = r.cmd.Wait()
	}
	return r.waitErr
}

func (r *ffmpegReader) Close() error {
	if r.cmd.Process == nil {
		return nil
	}
	if !r.done {
		// Stop decoding early; the exit status is meaningless after a kill.
		_ = r.cmd.Process.Kill()
		_ = r.wait()
		return nil
	}
	if r.waited {
		return nil
	}
	if err := r.wait(); err != nil {
		return fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(r.stderr.String()))
	}
	return nil
}

// Create starts an encoder writing an MPEG-4 mp4 at the given size and rate.
func (c *FFmpegCodec) Create(ctx context.Context, path string, info VideoInfo) (FrameWriter, error) {
	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return nil, fmt.Errorf("invalid output format %dx%d@%g", info.Width, info.Height, info.FPS)
	}

	cmd := exec.CommandContext(ctx, c.FFmpeg,
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"-r", strconv.FormatFloat(info.FPS, 'f', -1, 64),
		"-i", "-",
		"-c:v", "mpeg4",
		"-tag:v", "mp4v",
		"-q:v", "2",
		"-pix_fmt", "yuv420p",
		path,
	)
	w := &ffmpegWriter{cmd: cmd, info: info}
	cmd.Stderr = &w.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	w.stdin = stdin
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return w, nil
}

type ffmpegWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	info   VideoInfo
}

func (w *ffmpegWriter) Write(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != w.info.Width || b.Dy() != w.info.Height {
		return fmt.Errorf("frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), w.info.Width, w.info.Height)
	}
	rowLen := 4 * w.info.Width
	if frame.Stride == rowLen && b.Min == (image.Point{}) {
		_, err := w.stdin.Write(frame.Pix[:rowLen*w.info.Height])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := frame.PixOffset(b.Min.X, y)
		if _, err := w.stdin.Write(frame.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

func (w *ffmpegWriter) Close() error {
	if err := w.stdin.Close(); err != nil {
		return err
	}
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(w.stderr.String()))
	}
	return nil
}
