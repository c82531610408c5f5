package exportsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	pkgerrors "kgraph/pkg/errors"
)

const (
	sourceFile = "file"

	defaultDebounce = 500 * time.Millisecond
)

// FileSource reads a graph export saved on disk
type FileSource struct {
	path     string
	debounce time.Duration
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewFileSource creates a source reading the export at path
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	if path == "" {
		return nil, errors.New("export file path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export file: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		path:     abs,
		debounce: defaultDebounce,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}, nil
}

// WithDebounce sets how long Watch waits for writes to settle
func (s *FileSource) WithDebounce(d time.Duration) *FileSource {
	s.debounce = d
	return s
}

// Name implements ports.ExportSource
func (s *FileSource) Name() string {
	return sourceFile
}

// Path returns the absolute path of the export file
func (s *FileSource) Path() string {
	return s.path
}

// FetchExport implements ports.ExportSource
func (s *FileSource) FetchExport(ctx context.Context) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "FileSource.FetchExport",
		trace.WithAttributes(attribute.String("file.path", s.path)),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pkgerrors.NewNotFoundError("export file").
				WithCode(pkgerrors.CodeTransport).
				WithDetails(map[string]any{"path": s.path}).
				WithCause(err)
		}
		return nil, pkgerrors.NewExternalError("export file", err).WithCode(pkgerrors.CodeTransport)
	}

	span.SetAttributes(attribute.Int("file.size", len(data)))
	return data, nil
}

// Watch calls onChange after the export file is written, created or
// renamed into place. Bursts of events are collapsed into one call. It
// blocks until ctx is done.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors and exporters often replace the file, so watch its directory
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s.logger.Info("Watching export file", zap.String("path", s.path))

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			s.logger.Debug("Export file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("File watcher error", zap.Error(err))

		case <-ctx.Done():
			s.logger.Info("Stopping export file watcher")
			return nil
		}
	}
}

// Watcher is implemented by sources that can signal export changes
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

var _ Watcher = (*FileSource)(nil)
