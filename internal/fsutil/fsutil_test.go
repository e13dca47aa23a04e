package fsutil

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	content := `{"id":"a"}

not json
{"id":"b"}
  {"id":"c"}  
{"id":
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, skipped, err := ReadJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, records, 3)
	assert.JSONEq(t, `{"id":"a"}`, string(records[0]))
	assert.JSONEq(t, `{"id":"c"}`, string(records[2]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonl")

	_, _, err := ReadJSONL(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	records, skipped, err := ReadJSONLOptional(path)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, skipped)
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	in := []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"b":2}`),
	}
	require.NoError(t, WriteJSONL(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	out, _, err := ReadJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteJSONIndentsAndEndsWithNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, WriteJSON(path, map[string]string{"name": "demo"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"demo\"\n}\n", string(data))
}

func TestWriteAtomicLeavesNoTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := WriteAtomic(path, func(w *bufio.Writer) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x")
	require.NoError(t, RemoveIfExists(path))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, RemoveIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
