// ABOUTME: Pose estimator that delegates to an HTTP inference service.
// ABOUTME: Sends each frame as JPEG and reads normalized landmarks back as JSON.
package highlight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"
)

// HTTPPoseEstimator posts frames to a pose-estimation service.
//
// The service receives an image/jpeg body and answers with
// {"landmarks":[{"x":..,"y":..,"z":..,"visibility":..}, ...]} in landmark
// index order, or an empty list when no person is found.
type HTTPPoseEstimator struct {
	URL     string
	Client  *http.Client
	Quality int
}

// NewHTTPPoseEstimator creates an estimator for the service at url.
func NewHTTPPoseEstimator(url string) *HTTPPoseEstimator {
	return &HTTPPoseEstimator{
		URL:     url,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Quality: 90,
	}
}

// Estimate sends one frame and decodes the detected pose.
func (e *HTTPPoseEstimator) Estimate(ctx context.Context, frame image.Image) (*Pose, error) {
	var body bytes.Buffer
	if err := jpeg.Encode(&body, frame, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build pose request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pose service returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var pose Pose
	if err := json.NewDecoder(resp.Body).Decode(&pose); err != nil {
		return nil, fmt.Errorf("decode pose response: %w", err)
	}
	if len(pose.Landmarks) == 0 {
		return nil, nil
	}
	if len(pose.Landmarks) != NumLandmarks {
		return nil, fmt.Errorf("pose service returned %d landmarks, want %d", len(pose.Landmarks), NumLandmarks)
	}
	return &pose, nil
}
