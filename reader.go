package save

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/meigma/save/internal/wire"
)

// skipChunkSize bounds the scratch buffer used to discard unread body
// bytes; it is never sized to the member itself.
const skipChunkSize = 4096

// Reader reads the members of an archive in order.
//
// The format has no table of contents, so Reader is a forward-only cursor:
// each call to Next parses one header and exposes the body through the
// returned Member. Any body bytes the caller does not read are discarded
// automatically on the following Next call, so metadata-only traversal
// never has to drain bodies by hand.
type Reader struct {
	zr *gzip.Reader

	// file is set when the Reader owns the underlying file (Open).
	file *os.File

	// remaining is the count of body bytes of the current member not yet
	// delivered to, or skipped past, the caller. It is zero exactly when
	// the decoder is positioned at a header boundary.
	remaining int64

	// gen invalidates Members issued before the latest Next call.
	gen uint64
}

// Open opens the archive at path for reading.
//
// The Reader owns both the file and the gzip decoder; Close releases them.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("save: open %s: %w", path, err)
	}
	r.file = f
	return r, nil
}

// NewReader reads an archive from r, which must carry a gzip stream.
//
// The caller retains ownership of r; Close releases only the decoder.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{zr: zr}, nil
}

// Next advances to the next member and returns it.
//
// Next first discards whatever the caller left unread of the current member,
// then parses the next header. It returns io.EOF when the archive ends
// cleanly at a header boundary; a stream that ends anywhere else is
// ErrTruncated. The returned Member is only valid until the next call to
// Next: reads through an older Member fail with ErrStaleMember.
func (r *Reader) Next() (*Member, error) {
	if err := r.discard(); err != nil {
		return nil, err
	}

	nameLen, err := wire.ReadUint32(r.zr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("save: member name length: %w", err)
	}

	name, err := wire.ReadName(r.zr, nameLen)
	if err != nil {
		return nil, fmt.Errorf("save: member name: %w", err)
	}

	size, err := wire.ReadUint32(r.zr)
	if err != nil {
		// A clean EOF here is still mid-header: the name was read but
		// its size field is missing.
		if errors.Is(err, io.EOF) {
			err = wire.ErrTruncated
		}
		return nil, fmt.Errorf("save: member %q size: %w", name, err)
	}

	r.remaining = int64(size)
	r.gen++
	return &Member{name: name, size: size, r: r, gen: r.gen}, nil
}

// discard reads and drops the unread remainder of the current member.
func (r *Reader) discard() error {
	var buf [skipChunkSize]byte
	for r.remaining > 0 {
		chunk := buf[:]
		if r.remaining < skipChunkSize {
			chunk = buf[:r.remaining]
		}
		n, err := r.zr.Read(chunk)
		r.remaining -= int64(n)
		switch {
		case err == nil && n > 0:
		case errors.Is(err, io.EOF) && r.remaining == 0:
		case err == nil || errors.Is(err, io.EOF):
			return fmt.Errorf("save: skipping member body: %w", wire.ErrTruncated)
		default:
			return fmt.Errorf("save: skipping member body: %w", err)
		}
	}
	return nil
}

// Close closes the gzip decoder and, if the Reader was created with Open,
// the underlying file.
func (r *Reader) Close() error {
	err := r.zr.Close()
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Member is a cursor over one archive member's body.
//
// A Member borrows its Reader exclusively: it is valid only until the next
// call to Next, which discards any unread body bytes and invalidates it.
type Member struct {
	name string
	size uint32
	r    *Reader
	gen  uint64
}

// Name returns the member's name.
func (m *Member) Name() string { return m.name }

// Size returns the declared size of the member's body in bytes.
func (m *Member) Size() uint32 { return m.size }

// Read reads body bytes into p, up to the declared size.
//
// Read returns io.EOF once the full body has been delivered. If the stream
// ends with body bytes still owed, the archive is malformed and Read returns
// ErrTruncated rather than a silent short read.
func (m *Member) Read(p []byte) (int, error) {
	if m.gen != m.r.gen {
		return 0, ErrStaleMember
	}
	if m.r.remaining == 0 {
		return 0, io.EOF
	}
	// The gzip decoder misreads a zero-byte request as end of data, so an
	// empty buffer must be answered without touching it.
	if len(p) == 0 {
		return 0, nil
	}
	if int64(len(p)) > m.r.remaining {
		p = p[:m.r.remaining]
	}

	n, err := m.r.zr.Read(p)
	m.r.remaining -= int64(n)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		if m.r.remaining > 0 {
			return n, fmt.Errorf("save: member %q body: %w", m.name, wire.ErrTruncated)
		}
		return n, nil
	default:
		return n, err
	}
}
