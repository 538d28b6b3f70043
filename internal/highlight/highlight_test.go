// ABOUTME: Tests for landmark parsing, marker drawing, frame annotation and the HTTP endpoint.
// ABOUTME: Video and pose estimation are replaced by in-memory fakes.
package highlight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var green = color.RGBA{R: 0, G: 255, B: 0, A: 255}

type fakeCodec struct {
	info    VideoInfo
	frames  int
	openErr error
	written []*image.RGBA
}

func (c *fakeCodec) Open(_ context.Context, path string) (FrameReader, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &fakeReader{info: c.info, left: c.frames}, nil
}

func (c *fakeCodec) Create(_ context.Context, path string, info VideoInfo) (FrameWriter, error) {
	return &fakeWriter{codec: c, path: path}, nil
}

type fakeReader struct {
	info VideoInfo
	left int
}

func (r *fakeReader) Info() VideoInfo { return r.info }

func (r *fakeReader) Next() (*image.RGBA, error) {
	if r.left == 0 {
		return nil, io.EOF
	}
	r.left--
	return image.NewRGBA(image.Rect(0, 0, r.info.Width, r.info.Height)), nil
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	codec *fakeCodec
	path  string
}

func (w *fakeWriter) Write(frame *image.RGBA) error {
	w.codec.written = append(w.codec.written, frame)
	return nil
}

func (w *fakeWriter) Close() error {
	return os.WriteFile(w.path, []byte("fake-mp4"), 0o600)
}

type fakeEstimator struct {
	x, y  float64
	empty bool
	err   error
	calls int
}

func (e *fakeEstimator) Estimate(context.Context, image.Image) (*Pose, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if e.empty {
		return nil, nil
	}
	pose := &Pose{Landmarks: make([]Point, NumLandmarks)}
	for i := range pose.Landmarks {
		pose.Landmarks[i] = Point{X: e.x, Y: e.y, Visibility: 1}
	}
	return pose, nil
}

func newTestServer(t *testing.T, codec *fakeCodec, est PoseEstimator) (*Server, string) {
	t.Helper()
	tmp := t.TempDir()
	var annotator *Annotator
	if codec != nil {
		annotator = NewAnnotator(codec, est)
	}
	s := NewServer(annotator, ServerOptions{
		AllowedOrigins: []string{"http://localhost:5173"},
		TempDir:        tmp,
		Logger:         log.New(io.Discard),
	})
	return s, tmp
}

func uploadRequest(t *testing.T, keypoint string, withFile bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withFile {
		part, err := mw.CreateFormFile("file", "clip.mp4")
		require.NoError(t, err)
		_, err = part.Write([]byte("not really a video"))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "x"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/highlight_keypoint/"+keypoint, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload["detail"]
}

func TestParseLandmark(t *testing.T) {
	lm, err := ParseLandmark("left_wrist")
	require.NoError(t, err)
	assert.Equal(t, LeftWrist, lm)

	lm, err = ParseLandmark("Right_Foot_Index")
	require.NoError(t, err)
	assert.Equal(t, RightFootIndex, lm)

	_, err = ParseLandmark("elbow")
	var invalid *InvalidKeypointError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Invalid keypoint: ELBOW", err.Error())
}

func TestLandmarkSet(t *testing.T) {
	all := Landmarks()
	require.Len(t, all, 33)
	assert.Equal(t, "NOSE", all[0].String())
	assert.Equal(t, "RIGHT_FOOT_INDEX", all[32].String())

	seen := map[string]bool{}
	for _, lm := range all {
		parsed, err := ParseLandmark(strings.ToLower(lm.String()))
		require.NoError(t, err)
		assert.Equal(t, lm, parsed)
		assert.False(t, seen[lm.String()], "duplicate name %s", lm)
		seen[lm.String()] = true
	}
	assert.Equal(t, "Landmark(40)", Landmark(40).String())
}

func TestToPixelTruncates(t *testing.T) {
	assert.Equal(t, image.Pt(9, 9), ToPixel(Point{X: 0.999, Y: 0.999}, image.Rect(0, 0, 10, 10)))
	assert.Equal(t, image.Pt(25, 38), ToPixel(Point{X: 0.25, Y: 0.75}, image.Rect(0, 0, 101, 51)))
	assert.Equal(t, image.Pt(0, 0), ToPixel(Point{}, image.Rect(0, 0, 640, 480)))
}

func TestDrawMarker(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	DrawMarker(img, image.Pt(20, 20), 10, green)

	assert.Equal(t, green, img.RGBAAt(20, 20))
	assert.Equal(t, green, img.RGBAAt(30, 20))
	assert.Equal(t, green, img.RGBAAt(20, 10))
	assert.NotEqual(t, green, img.RGBAAt(31, 20))
	assert.NotEqual(t, green, img.RGBAAt(28, 28))
}

func TestDrawMarkerClipsAtEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	DrawMarker(img, image.Pt(0, 0), 3, green)

	assert.Equal(t, green, img.RGBAAt(0, 0))
	assert.Equal(t, green, img.RGBAAt(3, 0))
	assert.NotEqual(t, green, img.RGBAAt(3, 3))

	DrawMarker(img, image.Pt(-50, -50), 3, green)
}

func TestAnnotate(t *testing.T) {
	codec := &fakeCodec{info: VideoInfo{Width: 100, Height: 50, FPS: 25}, frames: 3}
	est := &fakeEstimator{x: 0.5, y: 0.5}

	dir := t.TempDir()
	in := dir + "/in.mp4"
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o600))

	stats, err := NewAnnotator(codec, est).Annotate(context.Background(), in, dir+"/out.mp4", Nose)
	require.NoError(t, err)
	assert.Equal(t, Stats{Frames: 3, Marked: 3}, stats)
	assert.Equal(t, 3, est.calls)

	require.Len(t, codec.written, 3)
	for _, frame := range codec.written {
		assert.Equal(t, green, frame.RGBAAt(50, 25))
		assert.NotEqual(t, green, frame.RGBAAt(0, 0))
	}
	assert.FileExists(t, dir+"/out.mp4")
}

func TestAnnotateWithoutPose(t *testing.T) {
	codec := &fakeCodec{info: VideoInfo{Width: 20, Height: 20, FPS: 30}, frames: 2}
	dir := t.TempDir()
	in := dir + "/in.mp4"
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o600))

	stats, err := NewAnnotator(codec, &fakeEstimator{empty: true}).Annotate(context.Background(), in, dir+"/out.mp4", LeftKnee)
	require.NoError(t, err)
	assert.Equal(t, Stats{Frames: 2, Marked: 0}, stats)
	require.Len(t, codec.written, 2)
}

func TestAnnotateErrors(t *testing.T) {
	dir := t.TempDir()
	in := dir + "/in.mp4"
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o600))

	codec := &fakeCodec{info: VideoInfo{Width: 20, Height: 20, FPS: 30}, frames: 2}
	_, err := NewAnnotator(codec, &fakeEstimator{err: errors.New("model crashed")}).
		Annotate(context.Background(), in, dir+"/out.mp4", Nose)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAnnotator(codec, &fakeEstimator{}).Annotate(ctx, in, dir+"/out2.mp4", Nose)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRate(t *testing.T) {
	fps, err := parseRate("30000/1001")
	require.NoError(t, err)
	assert.InDelta(t, 29.97, fps, 0.001)

	fps, err = parseRate("25")
	require.NoError(t, err)
	assert.Equal(t, 25.0, fps)

	_, err = parseRate("0/0")
	assert.Error(t, err)
	_, err = parseRate("abc")
	assert.Error(t, err)
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		width  int
		height int
	}{
		{
			name:  "plain",
			json:  `{"streams":[{"width":1280,"height":720,"r_frame_rate":"30/1","avg_frame_rate":"30/1"}]}`,
			width: 1280, height: 720,
		},
		{
			name:  "rotate tag",
			json:  `{"streams":[{"width":1920,"height":1080,"r_frame_rate":"30/1","avg_frame_rate":"30/1","tags":{"rotate":"90"}}]}`,
			width: 1080, height: 1920,
		},
		{
			name:  "display matrix",
			json:  `{"streams":[{"width":1920,"height":1080,"r_frame_rate":"30/1","avg_frame_rate":"0/0","side_data_list":[{"rotation":-90}]}]}`,
			width: 1080, height: 1920,
		},
		{
			name:  "upside down",
			json:  `{"streams":[{"width":640,"height":480,"r_frame_rate":"25/1","avg_frame_rate":"25/1","side_data_list":[{"rotation":180}]}]}`,
			width: 640, height: 480,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseProbe([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.width, info.Width)
			assert.Equal(t, tt.height, info.Height)
			assert.Greater(t, info.FPS, 0.0)
		})
	}

	_, err := parseProbe([]byte(`{"streams":[]}`))
	assert.Error(t, err)
}

func TestFFmpegReaderShortFrameReportsStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cmd := exec.Command("sh", "-c", "printf abc; echo decoder exploded >&2; exit 1")
	r := &ffmpegReader{cmd: cmd, info: VideoInfo{Width: 2, Height: 2, FPS: 30}}
	cmd.Stderr = &r.stderr
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	r.stdout = stdout
	require.NoError(t, cmd.Start())

	_, err = r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder exploded")

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestRootAndHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello ProGuard"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHighlightKeypoint(t *testing.T) {
	codec := &fakeCodec{info: VideoInfo{Width: 64, Height: 48, FPS: 30}, frames: 4}
	s, tmp := newTestServer(t, codec, &fakeEstimator{x: 0.25, y: 0.5})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "left_wrist", true))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="left_wrist.mp4"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "fake-mp4", rec.Body.String())

	require.Len(t, codec.written, 4)
	assert.Equal(t, green, codec.written[0].RGBAAt(16, 24))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files should be removed")
}

func TestHighlightInvalidKeypoint(t *testing.T) {
	codec := &fakeCodec{info: VideoInfo{Width: 8, Height: 8, FPS: 30}, frames: 1}
	s, _ := newTestServer(t, codec, &fakeEstimator{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "elbow", true))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid keypoint: ELBOW", decodeDetail(t, rec))
	assert.Empty(t, codec.written)
}

func TestHighlightMissingFile(t *testing.T) {
	codec := &fakeCodec{info: VideoInfo{Width: 8, Height: 8, FPS: 30}, frames: 1}
	s, _ := newTestServer(t, codec, &fakeEstimator{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "nose", false))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing video file", decodeDetail(t, rec))
}

func TestHighlightProcessingFailure(t *testing.T) {
	codec := &fakeCodec{openErr: errors.New("corrupt container")}
	s, tmp := newTestServer(t, codec, &fakeEstimator{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "nose", true))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not process video", decodeDetail(t, rec))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHighlightWithoutEstimator(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "nose", true))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/highlight_keypoint/nose", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHTTPPoseEstimator(t *testing.T) {
	landmarks := make([]Point, NumLandmarks)
	landmarks[LeftWrist] = Point{X: 0.4, Y: 0.6, Visibility: 0.9}

	var respond func(w http.ResponseWriter)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		_, _, err := image.Decode(r.Body)
		assert.NoError(t, err)
		respond(w)
	}))
	defer srv.Close()

	est := NewHTTPPoseEstimator(srv.URL)
	frame := image.NewRGBA(image.Rect(0, 0, 16, 16))

	respond = func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(Pose{Landmarks: landmarks})
	}
	pose, err := est.Estimate(context.Background(), frame)
	require.NoError(t, err)
	p, ok := pose.Point(LeftWrist)
	require.True(t, ok)
	assert.InDelta(t, 0.4, p.X, 1e-9)
	assert.InDelta(t, 0.6, p.Y, 1e-9)

	respond = func(w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"landmarks":[]}`))
	}
	pose, err = est.Estimate(context.Background(), frame)
	require.NoError(t, err)
	assert.Nil(t, pose)
	_, ok = pose.Point(Nose)
	assert.False(t, ok)

	respond = func(w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"landmarks":[{"x":0.1,"y":0.1}]}`))
	}
	_, err = est.Estimate(context.Background(), frame)
	assert.Error(t, err)

	respond = func(w http.ResponseWriter) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}
	_, err = est.Estimate(context.Background(), frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}
