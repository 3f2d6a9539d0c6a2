package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Entry{
		Transcript: "save the document",
		Kind:       "file",
		Action:     "file save",
		Applied:    true,
	}))
	require.NoError(t, store.Append(ctx, Entry{
		Transcript: "do a backflip",
		Kind:       "unrecognized",
		Action:     `unrecognized "do a backflip"`,
	}))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "do a backflip", entries[0].Transcript)
	require.False(t, entries[0].Applied)
	require.Equal(t, "save the document", entries[1].Transcript)
	require.True(t, entries[1].Applied)
	require.WithinDuration(t, time.Now(), entries[0].At, time.Minute)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Entry{Transcript: "x", Kind: "insert", Action: "insert", Applied: true}))
	}

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestExportRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Entry{Transcript: "type hello", Kind: "insert", Action: `insert "hello"`, Applied: true}))
	require.NoError(t, store.Append(ctx, Entry{Transcript: "run the program", Kind: "execute", Action: "execute", Applied: false, Error: "save the document before running it"}))

	var out bytes.Buffer
	require.NoError(t, store.Export(ctx, &out))

	zr, err := zstd.NewReader(&out)
	require.NoError(t, err)
	defer zr.Close()

	var entries []Entry
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())

	// Oldest first.
	require.Len(t, entries, 2)
	require.Equal(t, "type hello", entries[0].Transcript)
	require.Equal(t, "run the program", entries[1].Transcript)
	require.Equal(t, "save the document before running it", entries[1].Error)
}
