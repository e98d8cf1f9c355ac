package entity

import (
	"encoding/base64"
	"errors"
	"sync/atomic"
	"time"
)

var ErrStaleSnapshot = errors.New("snapshot already used by a decision call")

// Snapshot is a point-in-time capture of the controlled surface. It may feed
// exactly one decision call; Claim enforces that.
type Snapshot struct {
	ID         string
	Data       []byte
	MimeType   string
	Width      int
	Height     int
	CapturedAt time.Time

	claimed atomic.Bool
}

func NewSnapshot(id string, data []byte, mimeType string, width, height int) *Snapshot {
	return &Snapshot{
		ID:         id,
		Data:       data,
		MimeType:   mimeType,
		Width:      width,
		Height:     height,
		CapturedAt: time.Now(),
	}
}

func (s *Snapshot) Claim() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if !s.claimed.CompareAndSwap(false, true) {
		return ErrStaleSnapshot
	}
	return nil
}

func (s *Snapshot) Claimed() bool {
	return s.claimed.Load()
}

// DataURI returns the capture inlined for vision message parts.
func (s *Snapshot) DataURI() string {
	if s == nil || len(s.Data) == 0 {
		return ""
	}
	mime := s.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
