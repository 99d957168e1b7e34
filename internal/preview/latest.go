package preview

import (
	"bytes"
	"image/jpeg"
	"sync"

	"github.com/smazurov/videoconcat/internal/media"
)

const jpegQuality = 80

// Snapshot is the most recent previewed frame.
type Snapshot struct {
	JPEG     []byte
	Caption  Caption
	Sequence uint64
}

// Latest keeps the most recently shown frame in memory, JPEG encoded, for an
// HTTP page to poll. Show never waits on readers.
type Latest struct {
	mu       sync.RWMutex
	snapshot Snapshot
	onShow   func(Caption, uint64)
}

// NewLatest creates an empty Latest previewer.
func NewLatest() *Latest {
	return &Latest{}
}

// OnShow registers a callback invoked after each frame is stored.
func (l *Latest) OnShow(fn func(caption Caption, sequence uint64)) {
	l.mu.Lock()
	l.onShow = fn
	l.mu.Unlock()
}

// Show implements Previewer.
func (l *Latest) Show(frame media.Frame, caption Caption) error {
	img, err := Render(frame, caption)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return err
	}

	l.mu.Lock()
	l.snapshot = Snapshot{
		JPEG:     buf.Bytes(),
		Caption:  caption,
		Sequence: l.snapshot.Sequence + 1,
	}
	seq, fn := l.snapshot.Sequence, l.onShow
	l.mu.Unlock()

	if fn != nil {
		fn(caption, seq)
	}
	return nil
}

// Snapshot returns the latest frame, or false if nothing was shown yet.
func (l *Latest) Snapshot() (Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snapshot.Sequence == 0 {
		return Snapshot{}, false
	}
	return l.snapshot, true
}
