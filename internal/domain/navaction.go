package domain

import "errors"

// ErrUnknownCallback is returned for callback payloads that do not decode to a NavAction
var ErrUnknownCallback = errors.New("unknown callback payload")

// NavAction is a navigation step carried in an inline button.
// Implementations: PathChoice, UniversityPath, SpecializationPath, FileSelection, BackAction.
type NavAction interface {
	navAction()
}

// PathChoice selects a main menu branch
type PathChoice struct {
	Path PathKind
}

// UniversityPath is a position in the tronc commun tree.
// Empty fields (and Module < 0) mean the level is not selected yet.
type UniversityPath struct {
	University string
	Semester   string
	Module     int
	Resource   string
}

// SpecializationPath is a position in the specialization tree
type SpecializationPath struct {
	Specialization string
	Semester       string
	Module         int
	Resource       string
}

// FileSelection picks one file of a resolved resource listing
type FileSelection struct {
	Specialization bool
	Scope          string
	Semester       string
	Module         int
	Resource       string
	// File is the FileEntry.Key of the chosen file
	File string
}

// BackAction returns to a top-level menu
type BackAction struct {
	Target View
}

func (PathChoice) navAction()         {}
func (UniversityPath) navAction()     {}
func (SpecializationPath) navAction() {}
func (FileSelection) navAction()      {}
func (BackAction) navAction()         {}
