package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
)

var (
	// ErrNoFrontmatter is returned for descriptor files without a leading YAML block.
	ErrNoFrontmatter = errors.New("missing frontmatter")
)

var descriptorFiles = map[string]bool{
	"index.mdx": true,
	"index.md":  true,
}

var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"public":       true,
}

// FSStore reads descriptors from a catalog directory tree.
//
// Each resource lives in an index.mdx (or index.md) whose YAML frontmatter is
// the descriptor. The collection is the nearest ancestor directory named
// after a collection, so nested layouts such as
// domains/Shipping/services/Location/index.mdx and
// events/OrderPlaced/versioned/0.0.1/index.mdx resolve naturally.
type FSStore struct {
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) Root() string { return s.root }

// IgnoredDir reports whether a directory name is skipped when walking a
// catalog: build output, dependencies and dot-directories.
func IgnoredDir(name string) bool {
	return ignoredDirs[name] || strings.HasPrefix(name, ".")
}

func (s *FSStore) Entries(ctx context.Context, c v1alpha1.Collection) ([]v1alpha1.Entry, error) {
	if !c.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	logger := log.FromContext(ctx).WithValues("root", s.root, "collection", c)

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != s.root && IgnoredDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !descriptorFiles[d.Name()] {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if CollectionForPath(rel) == c {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	sort.Strings(paths)

	entries := make([]v1alpha1.Entry, 0, len(paths))
	var errs []error
	for _, rel := range paths {
		e, err := s.read(rel, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	if agg := utilerrors.NewAggregate(errs); agg != nil {
		return nil, fmt.Errorf("decode %s: %w", c, agg)
	}

	logger.V(1).Info("loaded descriptors", "count", len(entries))
	return entries, nil
}

func (s *FSStore) read(rel string, c v1alpha1.Collection) (v1alpha1.Entry, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, rel))
	if err != nil {
		return v1alpha1.Entry{}, err
	}
	front, err := Frontmatter(raw)
	if err != nil {
		return v1alpha1.Entry{}, fmt.Errorf("%s: %w", rel, err)
	}
	var d v1alpha1.Descriptor
	if err := yaml.Unmarshal(front, &d); err != nil {
		return v1alpha1.Entry{}, fmt.Errorf("%s: %w", rel, err)
	}
	slashed := filepath.ToSlash(rel)
	return v1alpha1.Entry{
		ID:         slashed,
		Collection: c,
		FilePath:   slashed,
		Data:       d,
	}, nil
}

// CollectionForPath returns the collection of a descriptor at rel, a path
// relative to the catalog root, or "" if no ancestor names a collection.
func CollectionForPath(rel string) v1alpha1.Collection {
	dir := filepath.Dir(filepath.ToSlash(rel))
	segments := strings.Split(filepath.ToSlash(dir), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		c := v1alpha1.Collection(segments[i])
		if c.IsKnown() {
			return c
		}
	}
	return ""
}

var fence = []byte("---")

// Frontmatter extracts the YAML block delimited by leading "---" lines.
func Frontmatter(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, fence) {
		return nil, ErrNoFrontmatter
	}
	rest := raw[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, ErrNoFrontmatter
	}
	rest = rest[nl+1:]

	for offset := 0; offset <= len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t"), fence) {
			return rest[:offset], nil
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, ErrNoFrontmatter
}
