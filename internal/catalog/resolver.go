package catalog

import (
	"path/filepath"

	"coursebot/internal/domain"
)

// Resolver turns a navigation path into the files that still exist on disk
type Resolver struct {
	store  *Store
	root   string
	exists ExistenceChecker
}

// NewResolver creates a resolver. Relative file paths are joined onto root.
func NewResolver(store *Store, root string, exists ExistenceChecker) *Resolver {
	if exists == nil {
		exists = StatChecker{}
	}
	return &Resolver{
		store:  store,
		root:   root,
		exists: exists,
	}
}

// ResolveFiles returns existing files for the path in mapping order.
// A miss at any level returns an empty result.
func (r *Resolver) ResolveFiles(scope, semester, module, resourceType string) []domain.FileEntry {
	// one snapshot per call so a concurrent refresh is never mixed in
	mapping := r.store.Mapping()

	candidates := mapping.Lookup(scope, semester, module, resourceType)
	files := make([]domain.FileEntry, 0, len(candidates))
	for _, f := range candidates {
		if r.exists.Exists(r.FullPath(f)) {
			files = append(files, f)
		}
	}
	return files
}

// Invalidate drops cached existence results, if the checker keeps any
func (r *Resolver) Invalidate() {
	if p, ok := r.exists.(interface{ Purge() }); ok {
		p.Purge()
	}
}

// FullPath returns the filesystem location of an entry
func (r *Resolver) FullPath(f domain.FileEntry) string {
	p := filepath.FromSlash(f.Path)
	if filepath.IsAbs(p) || r.root == "" {
		return p
	}
	return filepath.Join(r.root, p)
}
