package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/groundcheck/internal/model"
)

func TestAppend_CreatesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.csv")

	// Separate loggers stand in for separate process runs
	for i := 0; i < 3; i++ {
		l := NewLogger(path, nil)
		got, err := l.Append(model.HistoryEntry{Status: model.VerdictYes, Response: fmt.Sprintf("run %d", i)})
		require.NoError(t, err)
		assert.Equal(t, path, got)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Status,Response\nYes,run 0\nYes,run 1\nYes,run 2\n", string(raw))
	assert.Equal(t, 1, strings.Count(string(raw), "Status,Response"))
}

func TestAppend_QuotesEmbeddedDelimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	l := NewLogger(path, nil)

	response := "Line one, with comma\n\n### Citations\n- [1](https://a.test) \"A\"\n"
	_, err := l.Append(model.HistoryEntry{Status: model.VerdictNo, Response: response})
	require.NoError(t, err)

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.VerdictNo, entries[0].Status)
	assert.Equal(t, response, entries[0].Response)
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")

	const writers = 4
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		l := NewLogger(path, nil)
		wg.Add(1)
		go func(w int, l *Logger) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := l.Append(model.HistoryEntry{Status: model.VerdictYes, Response: fmt.Sprintf("w%d-%d\nmultiline", w, i)})
				assert.NoError(t, err)
			}
		}(w, l)
	}
	wg.Wait()

	entries, err := NewLogger(path, nil).Entries()
	require.NoError(t, err)
	assert.Len(t, entries, writers*perWriter)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "Status,Response"))
	assert.True(t, strings.HasPrefix(string(raw), "Status,Response\n"))
}

func TestAppend_WriteFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	// A directory where the record should be makes every write fail
	path := filepath.Join(dir, "history.csv")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := NewLogger(path, nil).Append(model.HistoryEntry{Status: model.VerdictNo, Response: "x"})
	assert.Error(t, err)
}

func TestEntries_MissingRecord(t *testing.T) {
	entries, err := NewLogger(filepath.Join(t.TempDir(), "none.csv"), nil).Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewLogger_AbsolutePath(t *testing.T) {
	l := NewLogger("fact_check_history.csv", nil)
	assert.True(t, filepath.IsAbs(l.Path()))
	assert.Equal(t, "fact_check_history.csv", filepath.Base(l.Path()))
}

func TestAppend_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLogger(filepath.Join(dir, "history.csv"), nil).Append(model.HistoryEntry{Status: model.VerdictYes, Response: "ok"})
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "history.csv", files[0].Name())
}

func TestEntries_RejectsUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("Status,Response\nYes,fine\nMaybe,hand edited\n"), 0o644))

	_, err := NewLogger(path, nil).Entries()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"Maybe"`)
}
