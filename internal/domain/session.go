package domain

// View is the current position of a chat in the navigation tree
type View string

const (
	ViewMainMenu        View = "main_menu"
	ViewUniversities    View = "universities"
	ViewUniversityPaths View = "university_paths"
	ViewSemesters       View = "semesters"
	ViewModules         View = "modules"
	ViewResources       View = "resources"
	ViewSpecializations View = "specializations"
	ViewSpecSemesters   View = "spec_semesters"
	ViewSpecModules     View = "spec_modules"
	ViewSpecResources   View = "spec_resources"
	ViewSendingFile     View = "sending_file"
	ViewSendingFeedback View = "sending_feedback"
)

// PathKind is the top-level branch of the main menu
type PathKind string

const (
	PathTroncCommun PathKind = "tronc_commun"
	PathSpecialite  PathKind = "specialite"
)

// PendingFile is a document received during the /send flow
type PendingFile struct {
	FileID   string
	FileName string
	FileSize int64
}

// Session is the ephemeral navigation state of a chat.
// Module is -1 when no module is selected.
type Session struct {
	View           View
	Path           PathKind
	University     string
	Semester       string
	Module         int
	Specialization string
	PendingFile    *PendingFile
}

// NewSession returns a session at the main menu
func NewSession() Session {
	return Session{View: ViewMainMenu, Module: -1}
}

// Scope returns the catalog scope key for the current selection.
// A selected specialization takes precedence over the university.
func (s Session) Scope() string {
	if s.Specialization != "" {
		return s.Specialization
	}
	return s.University
}
