//go:build !gocv

// ABOUTME: Placeholder for builds without OpenCV.
// ABOUTME: Selecting the gocv codec reports how to enable it.
package highlight

import (
	"errors"
)

// GoCVAvailable reports whether this binary was built with OpenCV support.
const GoCVAvailable = false

// NewGoCVCodec fails unless the binary was built with -tags gocv.
func NewGoCVCodec() (Codec, error) {
	return nil, errors.New("gocv codec not available: rebuild with -tags gocv")
}
