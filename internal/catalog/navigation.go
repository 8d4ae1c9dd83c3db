package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"coursebot/internal/domain"

	"gopkg.in/yaml.v3"
)

// LoadNavigation reads a navigation catalog from a YAML file.
// It returns nil without error when the file does not exist.
func LoadNavigation(path string) (*domain.Navigation, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read navigation: %w", err)
	}

	var nav domain.Navigation
	if err := yaml.Unmarshal(data, &nav); err != nil {
		return nil, fmt.Errorf("failed to parse navigation: %w", err)
	}
	return &nav, nil
}

// Navigator provides the menu tree: a static catalog when configured,
// otherwise one derived from the current file mapping.
type Navigator struct {
	static *domain.Navigation
	store  *Store
}

// NewNavigator creates a navigator. static may be nil.
func NewNavigator(static *domain.Navigation, store *Store) *Navigator {
	return &Navigator{static: static, store: store}
}

// Navigation returns the menu tree
func (n *Navigator) Navigation() *domain.Navigation {
	if n.static != nil {
		return n.static
	}
	return DeriveNavigation(n.store.Mapping())
}

// DeriveNavigation builds a menu tree from a mapping. Scopes whose semesters
// all number 5 or above are treated as specializations.
func DeriveNavigation(mapping domain.FileMapping) *domain.Navigation {
	nav := &domain.Navigation{}

	for _, scopeKey := range sortedKeys(mapping) {
		semesters := mapping[scopeKey]
		scope := domain.Scope{Key: scopeKey, Name: scopeKey}
		specialization := len(semesters) > 0

		semesterKeys := make([]string, 0, len(semesters))
		for k := range semesters {
			semesterKeys = append(semesterKeys, k)
		}
		sort.Slice(semesterKeys, func(i, j int) bool {
			return semesterNumber(semesterKeys[i]) < semesterNumber(semesterKeys[j])
		})

		for _, semKey := range semesterKeys {
			if semesterNumber(semKey) < 5 {
				specialization = false
			}
			scope.Semesters = append(scope.Semesters, domain.Semester{
				Key:     semKey,
				Name:    semesterName(semKey),
				Modules: sortedKeys(semesters[semKey]),
			})
		}

		if specialization {
			nav.Specializations = append(nav.Specializations, scope)
		} else {
			nav.Universities = append(nav.Universities, scope)
		}
	}
	return nav
}

func semesterNumber(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "semester_"))
	if err != nil {
		return 0
	}
	return n
}

func semesterName(key string) string {
	if n := semesterNumber(key); n > 0 {
		return fmt.Sprintf("Semester %d", n)
	}
	return key
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
