package gocvsource

import "testing"

func TestNewVideoFrameSource_NonexistentFileErrors(t *testing.T) {
	_, err := NewVideoFrameSource("/nonexistent/path/to/video.mp4")
	if err == nil {
		t.Fatal("expected an error for a non-existent video file")
	}
}

func TestNewImageSequenceFrameSource_MissingSeqInfoErrors(t *testing.T) {
	_, err := NewImageSequenceFrameSource("/nonexistent/sequence/dir")
	if err == nil {
		t.Fatal("expected an error when seqinfo.ini is missing")
	}
}
