// ABOUTME: CLI command for the video highlight HTTP server.
// ABOUTME: Picks the codec and pose estimator from config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/proguard/internal/config"
	"github.com/harperreed/proguard/internal/highlight"
)

var (
	serveAddr    string
	servePoseURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the video highlight server",
	Long: `Start the HTTP server that highlights one body landmark in an uploaded video.

ENDPOINTS:

  GET  /                                   Greeting
  GET  /health                             Liveness check
  POST /highlight_keypoint/{keypoint_name} Multipart field "file" with the video

Keypoint names are the 33 pose landmarks, case-insensitive, for example
nose, left_wrist, right_knee, left_foot_index. Unknown names get a 400.

Each frame is sent to the pose-estimation service at server.pose_url; the
requested landmark gets a filled green marker and the video comes back as
<keypoint>.mp4 at the original size and frame rate.

CODECS:

  ffmpeg   Uses the ffmpeg and ffprobe binaries on PATH (default)
  gocv     Uses OpenCV; requires a binary built with -tags gocv

EXAMPLES:

  proguard serve
  proguard serve --addr :9000 --pose-url http://localhost:8500/pose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "proguard",
		})

		codec, err := newCodec(cfg.GetCodec())
		if err != nil {
			return err
		}

		poseURL := cfg.Server.PoseURL
		if servePoseURL != "" {
			poseURL = servePoseURL
		}
		var estimator highlight.PoseEstimator
		if poseURL != "" {
			estimator = highlight.NewHTTPPoseEstimator(poseURL)
		} else {
			logger.Warn("server.pose_url is not set; highlight requests will fail with 503")
		}

		annotator := highlight.NewAnnotator(codec, estimator)
		annotator.Radius = cfg.GetMarkerRadius()

		server := highlight.NewServer(annotator, highlight.ServerOptions{
			AllowedOrigins: cfg.GetAllowedOrigins(),
			Logger:         logger,
		})

		addr := cfg.GetAddr()
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting highlight server", "codec", cfg.GetCodec(), "pose_url", poseURL)
		return server.ListenAndServe(ctx, addr)
	},
}

func newCodec(name string) (highlight.Codec, error) {
	switch name {
	case config.CodecFFmpeg:
		return highlight.NewFFmpegCodec(), nil
	case config.CodecGoCV:
		return highlight.NewGoCVCodec()
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().StringVar(&servePoseURL, "pose-url", "", "pose-estimation service URL (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
