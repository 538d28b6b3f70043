//go:build gocv

// ABOUTME: Video codec backed by OpenCV through gocv.
// ABOUTME: Built only with the gocv tag since it needs the OpenCV C++ libraries.
package highlight

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"gocv.io/x/gocv"
)

// GoCVAvailable reports whether this binary was built with OpenCV support.
const GoCVAvailable = true

// GoCVCodec decodes with VideoCapture and encodes with an "mp4v" VideoWriter.
type GoCVCodec struct{}

// NewGoCVCodec returns the OpenCV codec.
func NewGoCVCodec() (Codec, error) {
	return GoCVCodec{}, nil
}

func (GoCVCodec) Open(_ context.Context, path string) (FrameReader, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.New("video could not be opened")
	}
	info := VideoInfo{
		Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    capture.Get(gocv.VideoCaptureFPS),
	}
	return &gocvReader{capture: capture, mat: gocv.NewMat(), info: info}, nil
}

func (GoCVCodec) Create(_ context.Context, path string, info VideoInfo) (FrameWriter, error) {
	writer, err := gocv.VideoWriterFile(path, "mp4v", info.FPS, info.Width, info.Height, true)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	return &gocvWriter{writer: writer}, nil
}

type gocvReader struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	info    VideoInfo
}

func (r *gocvReader) Info() VideoInfo {
	return r.info
}

func (r *gocvReader) Next() (*image.RGBA, error) {
	if ok := r.capture.Read(&r.mat); !ok || r.mat.Empty() {
		return nil, io.EOF
	}
	img, err := r.mat.ToImage()
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func (r *gocvReader) Close() error {
	r.mat.Close()
	return r.capture.Close()
}

type gocvWriter struct {
	writer *gocv.VideoWriter
}

func (w *gocvWriter) Write(frame *image.RGBA) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return err
	}
	defer mat.Close()
	return w.writer.Write(mat)
}

func (w *gocvWriter) Close() error {
	return w.writer.Close()
}
