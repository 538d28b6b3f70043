// ABOUTME: Frame-by-frame annotation of a video with one pose landmark.
// ABOUTME: Codec and pose estimation are pluggable boundaries.
package highlight

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// VideoInfo describes the stream an output must match.
type VideoInfo struct {
	Width  int
	Height int
	FPS    float64
}

// FrameReader yields decoded frames. Next returns io.EOF after the last frame.
type FrameReader interface {
	Info() VideoInfo
	Next() (*image.RGBA, error)
	Close() error
}

// FrameWriter encodes frames into an output container.
type FrameWriter interface {
	Write(frame *image.RGBA) error
	Close() error
}

// Codec opens input videos and creates output videos.
type Codec interface {
	Open(ctx context.Context, path string) (FrameReader, error)
	Create(ctx context.Context, path string, info VideoInfo) (FrameWriter, error)
}

// PoseEstimator finds a pose in a frame. A nil pose with a nil error means no
// person was detected.
type PoseEstimator interface {
	Estimate(ctx context.Context, frame image.Image) (*Pose, error)
}

// Stats summarises one annotation run.
type Stats struct {
	Frames int
	Marked int
}

// Annotator draws a marker on the requested landmark in every frame.
type Annotator struct {
	Codec     Codec
	Estimator PoseEstimator
	Radius    int
	Color     color.Color
}

// NewAnnotator creates an annotator with the default marker.
func NewAnnotator(codec Codec, estimator PoseEstimator) *Annotator {
	return &Annotator{
		Codec:     codec,
		Estimator: estimator,
		Radius:    MarkerRadius,
		Color:     MarkerColor,
	}
}

// Annotate reads in, marks lm on every frame with a detected pose and writes
// the result to out at the input's resolution and frame rate.
func (a *Annotator) Annotate(ctx context.Context, in, out string, lm Landmark) (stats Stats, err error) {
	reader, err := a.Codec.Open(ctx, in)
	if err != nil {
		return stats, fmt.Errorf("open video: %w", err)
	}
	defer reader.Close()

	writer, err := a.Codec.Create(ctx, out, reader.Info())
	if err != nil {
		return stats, fmt.Errorf("create output video: %w", err)
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("finish output video: %w", cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("decode frame %d: %w", stats.Frames, err)
		}

		pose, err := a.Estimator.Estimate(ctx, frame)
		if err != nil {
			return stats, fmt.Errorf("estimate pose on frame %d: %w", stats.Frames, err)
		}
		if p, ok := pose.Point(lm); ok {
			DrawMarker(frame, ToPixel(p, frame.Bounds()), a.Radius, a.Color)
			stats.Marked++
		}

		if err := writer.Write(frame); err != nil {
			return stats, fmt.Errorf("encode frame %d: %w", stats.Frames, err)
		}
		stats.Frames++
	}
}
