package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// MemberInfo describes one archive member without its body.
type MemberInfo struct {
	Name string
	Size uint32
}

// List returns the name and declared size of every member, in archive order.
//
// List never reads a body: it relies on the Reader discarding each unread
// body when advancing, so the cost is decompression plus header parsing.
func List(ctx context.Context, path string) ([]MemberInfo, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var members []MemberInfo
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			return members, nil
		}
		if err != nil {
			return nil, err
		}
		members = append(members, MemberInfo{Name: m.Name(), Size: m.Size()})
	}
}

// Extract materializes members of the archive at path into dir.
//
// An empty names list extracts everything. Otherwise names acts as a
// selection set: each member found in it is extracted and removed, and the
// sorted residue of names never encountered is returned. A non-empty residue
// is an outcome, not an error; callers decide how to report it.
//
// Output files are created under dir with parent directories made as needed,
// and each is synced to stable storage. Member names that would escape dir
// are rejected with ErrInsecureName.
func Extract(ctx context.Context, path, dir string, names []string, opts ...ExtractOption) ([]string, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	extractAll := len(wanted) == 0

	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	cfg.log().Info("extracting archive", "path", path, "dir", dir, "selected", len(names))

	// The body copy is pinned to this goroutine (the stream is sequential),
	// but syncing and closing finished files can overlap the next copy.
	var g errgroup.Group
	walkErr := extractMembers(ctx, r, dir, wanted, extractAll, &g, &cfg)
	if err := g.Wait(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		return nil, walkErr
	}

	missing := make([]string, 0, len(wanted))
	for n := range wanted {
		missing = append(missing, n)
	}
	slices.Sort(missing)
	return missing, nil
}

// extractMembers drives the reader to exhaustion, extracting the selected
// members and leaving the rest to the auto-skip.
func extractMembers(ctx context.Context, r *Reader, dir string, wanted map[string]struct{}, extractAll bool, g *errgroup.Group, cfg *extractConfig) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if !extractAll {
			if _, ok := wanted[m.Name()]; !ok {
				// Leave the body for Next's auto-skip.
				continue
			}
			delete(wanted, m.Name())
		}
		if err := extractMember(dir, m, buf, g); err != nil {
			return err
		}
		cfg.log().Debug("member extracted", "name", m.Name(), "size", m.Size())
	}
}

// extractMember copies one member's body to a new file under dir and hands
// the sync+close to g.
func extractMember(dir string, m *Member, buf []byte, g *errgroup.Group) error {
	name := m.Name()
	if !filepath.IsLocal(name) {
		return fmt.Errorf("save: member %q: %w", name, ErrInsecureName)
	}

	dst := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.CopyBuffer(f, m, buf); err != nil {
		f.Close()
		return err
	}

	g.Go(func() error {
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("save: sync %s: %w", dst, err)
		}
		return f.Close()
	})
	return nil
}
