package gocvsource

import (
	"fmt"
	"math"
	"path/filepath"

	"gocv.io/x/gocv"
	"gopkg.in/ini.v1"
)

// ImageSequenceFrameSource reads a MOTChallenge-style numbered-image
// directory, described by a seqinfo.ini file, as a frame source — useful
// as a deterministic test fixture that needs no real video codec.
type ImageSequenceFrameSource struct {
	dir    string
	imDir  string
	imExt  string
	length int
	fps    int
	width  int
	height int

	current int // 1-based frame index last Seek'd to
}

// NewImageSequenceFrameSource parses seqinfo.ini under dir and returns a
// source ready to Seek/Read.
func NewImageSequenceFrameSource(dir string) (*ImageSequenceFrameSource, error) {
	cfg, err := ini.Load(filepath.Join(dir, "seqinfo.ini"))
	if err != nil {
		return nil, fmt.Errorf("failed to load seqinfo.ini: %w", err)
	}
	section := cfg.Section("Sequence")

	s := &ImageSequenceFrameSource{
		dir:    dir,
		length: section.Key("seqLength").MustInt(0),
		fps:    section.Key("frameRate").MustInt(30),
		width:  section.Key("imWidth").MustInt(0),
		height: section.Key("imHeight").MustInt(0),
		imExt:  section.Key("imExt").MustString(".jpg"),
		imDir:  section.Key("imDir").MustString("img1"),
	}
	if s.length == 0 || s.width == 0 || s.height == 0 {
		return nil, fmt.Errorf("invalid seqinfo.ini: missing required fields")
	}
	return s, nil
}

// Seek selects the nearest 1-based frame index for the given timestamp.
func (s *ImageSequenceFrameSource) Seek(timestampSeconds float64) error {
	idx := int(math.Round(timestampSeconds*float64(s.fps))) + 1
	if idx < 1 {
		idx = 1
	}
	s.current = idx
	return nil
}

// Read decodes the image file for the current frame index. ok is false
// once the index runs past the sequence length.
func (s *ImageSequenceFrameSource) Read() (gocv.Mat, bool, error) {
	if s.current < 1 || s.current > s.length {
		return gocv.NewMat(), false, nil
	}
	path := filepath.Join(s.dir, s.imDir, fmt.Sprintf("%06d%s", s.current, s.imExt))
	frame := gocv.IMRead(path, gocv.IMReadColor)
	if frame.Empty() {
		frame.Close()
		return gocv.NewMat(), false, nil
	}
	return frame, true, nil
}

// Dimensions returns the sequence's declared image size.
func (s *ImageSequenceFrameSource) Dimensions() (int, int) {
	return s.width, s.height
}

// DurationSeconds returns the sequence's declared length divided by its
// declared framerate.
func (s *ImageSequenceFrameSource) DurationSeconds() float64 {
	if s.fps <= 0 {
		return 0
	}
	return float64(s.length) / float64(s.fps)
}
