package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"

	"github.com/powervision/estoque/internal/domain"
)

// ErrShareUnavailable is returned by a Sharer when the platform offers no
// share target.
var ErrShareUnavailable = errors.New("share unavailable")

const fileTimeLayout = "20060102-150405"

// Sharer hands an exported file to the platform.
type Sharer interface {
	Share(path, content string) error
}

// ClipboardSharer copies the CSV text to the system clipboard.
type ClipboardSharer struct{}

func (ClipboardSharer) Share(_, content string) error {
	if clipboard.Unsupported {
		return ErrShareUnavailable
	}
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("%w: %v", ErrShareUnavailable, err)
	}
	return nil
}

// NoShare is used when sharing is disabled in the config.
type NoShare struct{}

func (NoShare) Share(string, string) error { return ErrShareUnavailable }

// SharerFor maps the export.share config value to a Sharer.
func SharerFor(mode string) (Sharer, error) {
	switch mode {
	case "", "clipboard":
		return ClipboardSharer{}, nil
	case "none":
		return NoShare{}, nil
	}
	return nil, fmt.Errorf("unknown share mode %q", mode)
}

// Exporter writes the CSV file and shares it.
type Exporter struct {
	Dir    string // "" means os.TempDir()
	Sharer Sharer
	Now    func() time.Time
}

func NewExporter(dir string, sharer Sharer) *Exporter {
	return &Exporter{Dir: dir, Sharer: sharer, Now: time.Now}
}

// Export writes products to <dir>/produtos-<timestamp>.csv and shares the
// file. The path is returned even when sharing fails, so the caller can
// still point the user at it.
func (e *Exporter) Export(products []domain.Product) (string, error) {
	content := CSV(products)
	path, err := WriteFile(e.Dir, e.now(), content)
	if err != nil {
		return "", err
	}
	sharer := e.Sharer
	if sharer == nil {
		sharer = NoShare{}
	}
	if err := sharer.Share(path, content); err != nil {
		return path, err
	}
	return path, nil
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// WriteFile stores content in dir under a timestamped name.
func WriteFile(dir string, now time.Time, content string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, "produtos-"+now.Format(fileTimeLayout)+".csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
