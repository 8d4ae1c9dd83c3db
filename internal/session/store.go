package session

import (
	"sync"

	"coursebot/internal/domain"
)

// Store keeps per-chat navigation state in memory
type Store struct {
	sessions map[int64]domain.Session
	mu       sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[int64]domain.Session)}
}

// Get returns the chat's session, or a fresh main menu session
func (s *Store) Get(chatID int64) domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return domain.NewSession()
	}
	return sess
}

func (s *Store) set(chatID int64, sess domain.Session) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = sess
	return sess
}

func (s *Store) update(chatID int64, fn func(*domain.Session)) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = domain.NewSession()
	}
	fn(&sess)
	s.sessions[chatID] = sess
	return sess
}

// Reset moves the chat to the main menu and clears every selection
func (s *Store) Reset(chatID int64) domain.Session {
	return s.set(chatID, domain.NewSession())
}

// ChoosePath enters a main menu branch
func (s *Store) ChoosePath(chatID int64, path domain.PathKind) domain.Session {
	sess := domain.NewSession()
	sess.Path = path
	sess.View = domain.ViewUniversities
	if path == domain.PathSpecialite {
		sess.View = domain.ViewSpecializations
	}
	return s.set(chatID, sess)
}

// ShowUniversityPath moves to the level of the tronc commun tree that p points at
func (s *Store) ShowUniversityPath(chatID int64, p domain.UniversityPath) domain.Session {
	sess := domain.NewSession()
	sess.Path = domain.PathTroncCommun
	sess.University = p.University
	sess.Semester = p.Semester
	sess.Module = p.Module

	switch {
	case p.University == "":
		sess.View = domain.ViewUniversities
		sess.Semester, sess.Module = "", -1
	case p.Semester == "":
		sess.View = domain.ViewSemesters
		sess.Module = -1
	case p.Module < 0:
		sess.View = domain.ViewModules
	default:
		sess.View = domain.ViewResources
	}
	return s.set(chatID, sess)
}

// ShowSpecializationPath moves to the level of the specialization tree that p points at
func (s *Store) ShowSpecializationPath(chatID int64, p domain.SpecializationPath) domain.Session {
	sess := domain.NewSession()
	sess.Path = domain.PathSpecialite
	sess.Specialization = p.Specialization
	sess.Semester = p.Semester
	sess.Module = p.Module

	switch {
	case p.Specialization == "":
		sess.View = domain.ViewSpecializations
		sess.Semester, sess.Module = "", -1
	case p.Semester == "":
		sess.View = domain.ViewSpecSemesters
		sess.Module = -1
	case p.Module < 0:
		sess.View = domain.ViewSpecModules
	default:
		sess.View = domain.ViewSpecResources
	}
	return s.set(chatID, sess)
}

// StartFeedback waits for the chat's feedback text
func (s *Store) StartFeedback(chatID int64) domain.Session {
	return s.update(chatID, func(sess *domain.Session) {
		sess.View = domain.ViewSendingFeedback
		sess.PendingFile = nil
	})
}

// StartFileSharing waits for a document to share
func (s *Store) StartFileSharing(chatID int64) domain.Session {
	return s.update(chatID, func(sess *domain.Session) {
		sess.View = domain.ViewSendingFile
		sess.PendingFile = nil
	})
}

// AttachFile stores the received document while its name is requested
func (s *Store) AttachFile(chatID int64, file domain.PendingFile) domain.Session {
	return s.update(chatID, func(sess *domain.Session) {
		sess.View = domain.ViewSendingFile
		sess.PendingFile = &file
	})
}

// Len returns the number of tracked chats
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
