package save

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	members := []struct {
		name string
		body []byte
	}{
		{"gamesession.xml", []byte("<session/>")},
		{"empty.dat", nil},
		{"Ünïcödé 😀.sub", bytes.Repeat([]byte{0x5A}, 5000)},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, w.Append(m.name, bytes.NewReader(m.body), int64(len(m.body))))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	for _, want := range members {
		m, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want.name, m.Name())
		assert.Equal(t, uint32(len(want.body)), m.Size())
		got, err := io.ReadAll(m)
		require.NoError(t, err)
		if len(want.body) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, want.body, got)
		}
	}
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestWriter_CompressionLevel(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("compressible "), 4096)

	archive := func(level int) int {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, WriterLevel(level))
		require.NoError(t, err)
		require.NoError(t, w.Append("m", bytes.NewReader(body), int64(len(body))))
		require.NoError(t, w.Close())
		return buf.Len()
	}

	assert.Less(t, archive(gzip.BestCompression), archive(gzip.NoCompression))
}

func TestWriter_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := NewWriter(io.Discard, WriterLevel(42))
	require.Error(t, err)
}

func TestWriter_ShortSource(t *testing.T) {
	t.Parallel()

	w, err := NewWriter(io.Discard)
	require.NoError(t, err)

	err = w.Append("short", bytes.NewReader([]byte("abc")), 10)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriter_BodyTooLarge(t *testing.T) {
	t.Parallel()

	w, err := NewWriter(io.Discard)
	require.NoError(t, err)

	// The size check fires before any source byte is consumed.
	err = w.Append("huge", bytes.NewReader(nil), math.MaxUint32+1)
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

// chdir changes into dir for the duration of the test. It stands in for
// t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestPack_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	files := map[string][]byte{
		"a.txt": []byte("alpha"),
		"b.bin": bytes.Repeat([]byte{0x00, 0xFF}, 300),
	}
	require.NoError(t, os.WriteFile("a.txt", files["a.txt"], 0o644))
	require.NoError(t, os.WriteFile("b.bin", files["b.bin"], 0o644))

	ctx := context.Background()
	require.NoError(t, Pack(ctx, "out.save", []string{"a.txt", "b.bin"}))

	members, err := List(ctx, "out.save")
	require.NoError(t, err)
	require.Equal(t, []MemberInfo{
		{Name: "a.txt", Size: 5},
		{Name: "b.bin", Size: 600},
	}, members)

	dest := filepath.Join(dir, "unpacked")
	missing, err := Extract(ctx, "out.save", dest, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPack_MissingSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile("present.txt", []byte("x"), 0o644))
	err := Pack(context.Background(), "out.save", []string{"present.txt", "absent.txt"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPack_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile("a.txt", []byte("x"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Pack(ctx, "out.save", []string{"a.txt"})
	require.ErrorIs(t, err, context.Canceled)
}
