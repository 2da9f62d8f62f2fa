// Package gocvsource provides concrete compositor.FrameSource
// implementations: a gocv-backed video file/camera source, and a
// MOTChallenge-style numbered-image-sequence source for golden-file tests
// that should not depend on a real video codec being available.
package gocvsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// VideoFrameSource wraps gocv.VideoCapture for sequential, seekable frame
// reads (the writer half of opening a video lives in gocvsink).
type VideoFrameSource struct {
	capture *gocv.VideoCapture
	fps     float64
	width   int
	height  int
	frames  int
}

// NewVideoFrameSource opens a video file (expanding a leading ~) for
// sequential, seekable frame reads.
func NewVideoFrameSource(path string) (*VideoFrameSource, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file %s: %w", path, err)
	}

	return &VideoFrameSource{
		capture: capture,
		fps:     capture.Get(gocv.VideoCaptureFPS),
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		frames:  int(capture.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// Seek moves the capture to the frame nearest the given presentation
// timestamp.
func (s *VideoFrameSource) Seek(timestampSeconds float64) error {
	ms := timestampSeconds * 1000
	if ok := s.capture.Set(gocv.VideoCapturePOSMsec, ms); !ok {
		return fmt.Errorf("seek to %.3fs failed", timestampSeconds)
	}
	return nil
}

// Read decodes the frame at the current position. ok is false at end of
// stream; gocv does not distinguish EOF from a genuine decode failure, so
// both surface as (empty Mat, false, nil) — the caller treats this as a
// normal end of export, matching a real capture's own end-of-stream
// signal.
func (s *VideoFrameSource) Read() (gocv.Mat, bool, error) {
	frame := gocv.NewMat()
	if ok := s.capture.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.NewMat(), false, nil
	}
	return frame, true, nil
}

// Dimensions returns the source's native frame size.
func (s *VideoFrameSource) Dimensions() (int, int) {
	return s.width, s.height
}

// DurationSeconds returns the source's total duration, derived from frame
// count and fps.
func (s *VideoFrameSource) DurationSeconds() float64 {
	if s.fps <= 0 {
		return 0
	}
	return float64(s.frames) / s.fps
}

// Close releases the underlying capture.
func (s *VideoFrameSource) Close() error {
	return s.capture.Close()
}
