package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/meigma/save/internal/wire"
)

// Writer serializes members into an archive stream.
//
// Members are written in Append order; there is no index to rewrite, so a
// Writer needs no buffering beyond the gzip encoder's own. Close flushes the
// gzip trailer but does not sync or close the destination, which the caller
// owns.
type Writer struct {
	zw *gzip.Writer
}

// NewWriter writes an archive to w.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{level: gzip.DefaultCompression}
	for _, opt := range opts {
		opt(&cfg)
	}

	zw, err := gzip.NewWriterLevel(w, cfg.level)
	if err != nil {
		return nil, fmt.Errorf("save: create encoder: %w", err)
	}
	return &Writer{zw: zw}, nil
}

// Append writes one member: its name, its declared size, and exactly size
// bytes copied from r.
//
// The name is encoded as UTF-16LE; names whose code unit count overflows the
// 32-bit length field fail with ErrNameTooLong, and bodies over 2^32-1 bytes
// with ErrBodyTooLarge, before anything for this member reaches the stream.
// A source that yields fewer than size bytes leaves the archive malformed
// and is reported as an error.
func (w *Writer) Append(name string, r io.Reader, size int64) error {
	if size < 0 || size > math.MaxUint32 {
		return fmt.Errorf("save: member %q: %w", name, ErrBodyTooLarge)
	}

	hdr, err := wire.EncodeName(name)
	if err != nil {
		return fmt.Errorf("save: member %q: %w", name, err)
	}
	hdr = wire.AppendUint32(hdr, uint32(size))
	if _, err := w.zw.Write(hdr); err != nil {
		return fmt.Errorf("save: member %q header: %w", name, err)
	}

	if _, err := io.CopyN(w.zw, r, size); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("save: member %q body: %w", name, err)
	}
	return nil
}

// Close flushes the compressed trailer. It must be called exactly once;
// the archive is unreadable without it.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// Pack builds an archive at dest from the given source files, in order,
// using each source's path string as the member name.
//
// The output is synced to stable storage before Pack returns. There is no
// temp-file rename: a mid-pack failure leaves dest absent or incomplete,
// though members already flushed are intact up to the missing trailer.
func Pack(ctx context.Context, dest string, sources []string, opts ...PackOption) error {
	cfg := packConfig{level: gzip.DefaultCompression}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.log().Info("packing archive", "dest", dest, "members", len(sources))

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	if err := packMembers(ctx, f, sources, &cfg); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("save: sync %s: %w", dest, err)
	}
	return f.Close()
}

// packMembers writes every source into out and flushes the encoder.
func packMembers(ctx context.Context, out io.Writer, sources []string, cfg *packConfig) error {
	w, err := NewWriter(out, WriterLevel(cfg.level))
	if err != nil {
		return err
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := appendFile(w, src); err != nil {
			return err
		}
		cfg.log().Debug("member packed", "name", src)
	}
	return w.Close()
}

// appendFile frames the file at path as a member named after the path.
func appendFile(w *Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return w.Append(path, f, info.Size())
}
