package preview

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/smazurov/videoconcat/internal/logging"
	"github.com/smazurov/videoconcat/internal/media"
)

// File writes each previewed frame with its caption to a PNG file, replacing
// it atomically so image viewers watching the path always see a complete
// picture.
type File struct {
	path   string
	logger logging.Logger
}

// NewFile creates a previewer writing to path.
func NewFile(path string, logger logging.Logger) *File {
	return &File{path: path, logger: logger}
}

// Show implements Previewer.
func (p *File) Show(frame media.Frame, caption Caption) error {
	img, err := Render(frame, caption)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".preview-*.png")
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preview file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("replace preview file: %w", err)
	}

	if p.logger != nil {
		p.logger.Debug("Preview written", "path", p.path, "frame", caption.Index, "time", caption.Timestamp)
	}
	return nil
}
