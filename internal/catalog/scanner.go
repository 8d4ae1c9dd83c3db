package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"coursebot/internal/domain"

	"go.uber.org/zap"
)

// Content tree layout:
//
//	<root>/universities/<university>/semester_<1-4>/<resource type>/[<module>/]<file>
//	<root>/specializations/<specialization>/semester_<5-6>/<resource type>/[<module>/]<file>
const (
	UniversitiesDir    = "universities"
	SpecializationsDir = "specializations"
)

var documentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".txt":  true,
}

type scanBranch struct {
	dir           string
	firstSemester int
	lastSemester  int
}

var scanBranches = []scanBranch{
	{dir: UniversitiesDir, firstSemester: 1, lastSemester: 4},
	{dir: SpecializationsDir, firstSemester: 5, lastSemester: 6},
}

// DirScanner builds a file mapping from the content tree
type DirScanner struct {
	root   string
	logger *zap.Logger
}

// NewDirScanner creates a scanner rooted at root
func NewDirScanner(root string, logger *zap.Logger) *DirScanner {
	return &DirScanner{root: root, logger: logger}
}

// Scan walks the content tree. Missing folders are skipped.
func (s *DirScanner) Scan(ctx context.Context) (domain.FileMapping, error) {
	mapping := domain.FileMapping{}

	for _, branch := range scanBranches {
		scopes, err := listDirs(filepath.Join(s.root, branch.dir))
		if err != nil {
			return nil, err
		}

		for _, scope := range scopes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			for n := branch.firstSemester; n <= branch.lastSemester; n++ {
				semester := fmt.Sprintf("semester_%d", n)
				for _, rt := range domain.ResourceTypes {
					folder := filepath.Join(s.root, branch.dir, scope, semester, rt.Key)
					if err := s.scanResourceFolder(mapping, folder, scope, semester, rt.Key); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return mapping, nil
}

func (s *DirScanner) scanResourceFolder(mapping domain.FileMapping, folder, scope, semester, resourceType string) error {
	info, err := os.Stat(folder)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", folder, err)
	}

	found := 0
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !isDocument(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")

		// files placed directly in the type folder are filed under the type name
		module := resourceType
		if len(parts) > 1 {
			module = parts[0]
		}

		relToRoot, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		mapping.Add(scope, semester, module, resourceType, domain.FileEntry{
			Name:        d.Name(),
			Path:        filepath.ToSlash(relToRoot),
			Description: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
		})
		found++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", folder, err)
	}

	if found > 0 {
		s.logger.Debug("Mapped files",
			zap.String("scope", scope),
			zap.String("semester", semester),
			zap.String("resource_type", resourceType),
			zap.Int("files", found),
		)
	}
	return nil
}

func isDocument(name string) bool {
	if name == ".gitkeep" {
		return false
	}
	return documentExtensions[strings.ToLower(filepath.Ext(name))]
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
