// Package history keeps the append-only CSV record of fact-check outcomes.
//
// Rows are (Status, Response). The header is written exactly once, when the
// record is first created. Writers in one process are serialised by a mutex;
// across processes the header is published atomically with a hard link and
// each row goes out in a single write on an O_APPEND descriptor.
package history

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Logger appends outcomes to the history record
type Logger struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewLogger creates a logger for the record at path. The file is created lazily.
func NewLogger(path string, logger *zap.Logger) *Logger {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{path: path, logger: logger}
}

// Path returns the location of the record
func (l *Logger) Path() string {
	return l.path
}

// Append writes one row and returns the record location.
// Failures are returned as-is; nothing is retried.
func (l *Logger) Append(entry model.HistoryEntry) (string, error) {
	row, err := encodeRow([]string{entry.Status.String(), entry.Response})
	if err != nil {
		return "", fmt.Errorf("encode row: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureHeader(); err != nil {
		return "", fmt.Errorf("create history record: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open history record: %w", err)
	}

	if _, err := f.Write(row); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("append history row: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close history record: %w", err)
	}

	l.logger.Debug("history row appended", zap.String("path", l.path), zap.String("status", entry.Status.String()))
	return l.path, nil
}

// Entries reads every row back, header excluded. A missing record has no entries.
func (l *Logger) Entries() ([]model.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history record: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.HistoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history record: %w", err)
	}

	var entries []model.HistoryEntry
	for i, rec := range records {
		if i == 0 && rec[0] == model.HistoryHeader[0] && rec[1] == model.HistoryHeader[1] {
			continue
		}
		status, ok := model.ParseVerdict(rec[0])
		if !ok {
			return nil, fmt.Errorf("history record row %d: unknown status %q", i+1, rec[0])
		}
		entries = append(entries, model.HistoryEntry{
			Status:   status,
			Response: rec[1],
		})
	}
	return entries, nil
}

// ensureHeader creates the record with its header row if it does not exist yet
func (l *Logger) ensureHeader() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	header, err := encodeRow(model.HistoryHeader)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Link fails if another writer created the record first
	err = os.Link(tmpName, l.path)
	switch {
	case err == nil:
		l.logger.Info("history record created", zap.String("path", l.path))
		return nil
	case errors.Is(err, fs.ErrExist):
		return nil
	default:
		// Filesystem without hard links
		return createExclusive(l.path, header)
	}
}

func createExclusive(path string, header []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(header); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeRow(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
