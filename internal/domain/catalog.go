package domain

import (
	"fmt"
	"hash/fnv"
)

// FileEntry is a single downloadable file in the catalog
type FileEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Key identifies the file by its path, independent of listing order.
// Always 8 lowercase hex characters.
func (f FileEntry) Key() string {
	h := fnv.New32a()
	h.Write([]byte(f.Path))
	return fmt.Sprintf("%08x", h.Sum32())
}

// FileMapping is scope -> semester -> module -> resource type -> files.
// A lookup miss at any level means "no files".
type FileMapping map[string]map[string]map[string]map[string][]FileEntry

// Lookup returns the files stored under the given path, or nil
func (m FileMapping) Lookup(scope, semester, module, resourceType string) []FileEntry {
	if m == nil {
		return nil
	}
	semesters, ok := m[scope]
	if !ok {
		return nil
	}
	modules, ok := semesters[semester]
	if !ok {
		return nil
	}
	resources, ok := modules[module]
	if !ok {
		return nil
	}
	return resources[resourceType]
}

// Add appends files under the given path, creating intermediate levels
func (m FileMapping) Add(scope, semester, module, resourceType string, files ...FileEntry) {
	if _, ok := m[scope]; !ok {
		m[scope] = make(map[string]map[string]map[string][]FileEntry)
	}
	if _, ok := m[scope][semester]; !ok {
		m[scope][semester] = make(map[string]map[string][]FileEntry)
	}
	if _, ok := m[scope][semester][module]; !ok {
		m[scope][semester][module] = make(map[string][]FileEntry)
	}
	m[scope][semester][module][resourceType] = append(m[scope][semester][module][resourceType], files...)
}

// TotalFiles counts every file entry in the mapping
func (m FileMapping) TotalFiles() int {
	total := 0
	for _, semesters := range m {
		for _, modules := range semesters {
			for _, resources := range modules {
				for _, files := range resources {
					total += len(files)
				}
			}
		}
	}
	return total
}

// ResourceType is a category of material (lectures, tutorials, exams...)
type ResourceType struct {
	Key   string
	Label string
	Emoji string
}

// ResourceTypes lists the known resource categories in menu order
var ResourceTypes = []ResourceType{
	{Key: "cour", Label: "Cours", Emoji: "📘"},
	{Key: "td", Label: "TD", Emoji: "📑"},
	{Key: "tp", Label: "TP", Emoji: "🧪"},
	{Key: "interrogation", Label: "Interrogation", Emoji: "📝"},
	{Key: "exam", Label: "Exam", Emoji: "🎓"},
	{Key: "control_tp", Label: "Control TP", Emoji: "🖥️"},
	{Key: "drive", Label: "Drive", Emoji: "📂"},
	{Key: "book", Label: "Book", Emoji: "📚"},
	{Key: "emails", Label: "Emails", Emoji: "📧"},
}

// FindResourceType returns the resource type with the given key
func FindResourceType(key string) (ResourceType, bool) {
	for _, rt := range ResourceTypes {
		if rt.Key == key {
			return rt, true
		}
	}
	return ResourceType{}, false
}

// Navigation is the browsable catalog tree shown in menus
type Navigation struct {
	Universities    []Scope `yaml:"universities"`
	Specializations []Scope `yaml:"specializations"`
}

// Scope is a university or a specialization
type Scope struct {
	Key       string     `yaml:"key"`
	Name      string     `yaml:"name"`
	Semesters []Semester `yaml:"semesters"`
}

// Semester groups modules of one scope
type Semester struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`
}

// FindUniversity returns the university with the given key
func (n *Navigation) FindUniversity(key string) (*Scope, bool) {
	return findScope(n.Universities, key)
}

// FindSpecialization returns the specialization with the given key
func (n *Navigation) FindSpecialization(key string) (*Scope, bool) {
	return findScope(n.Specializations, key)
}

func findScope(scopes []Scope, key string) (*Scope, bool) {
	for i := range scopes {
		if scopes[i].Key == key {
			return &scopes[i], true
		}
	}
	return nil, false
}

// FindSemester returns the semester with the given key
func (s *Scope) FindSemester(key string) (*Semester, bool) {
	for i := range s.Semesters {
		if s.Semesters[i].Key == key {
			return &s.Semesters[i], true
		}
	}
	return nil, false
}

// Module returns the module name at index
func (s *Semester) Module(index int) (string, bool) {
	if index < 0 || index >= len(s.Modules) {
		return "", false
	}
	return s.Modules[index], true
}
