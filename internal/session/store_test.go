package session

import (
	"testing"

	"coursebot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetUnknownChat(t *testing.T) {
	store := NewStore()

	sess := store.Get(42)

	assert.Equal(t, domain.ViewMainMenu, sess.View)
	assert.Equal(t, -1, sess.Module)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ShowUniversityPath(t *testing.T) {
	tests := []struct {
		name         string
		path         domain.UniversityPath
		expectedView domain.View
	}{
		{
			name:         "university list",
			path:         domain.UniversityPath{Module: -1},
			expectedView: domain.ViewUniversities,
		},
		{
			name:         "semesters of university",
			path:         domain.UniversityPath{University: "batna2", Module: -1},
			expectedView: domain.ViewSemesters,
		},
		{
			name:         "modules of semester",
			path:         domain.UniversityPath{University: "batna2", Semester: "semester_1", Module: -1},
			expectedView: domain.ViewModules,
		},
		{
			name:         "resources of module",
			path:         domain.UniversityPath{University: "batna2", Semester: "semester_1", Module: 2},
			expectedView: domain.ViewResources,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()

			sess := store.ShowUniversityPath(1, tt.path)

			assert.Equal(t, tt.expectedView, sess.View)
			assert.Equal(t, domain.PathTroncCommun, sess.Path)
			assert.Equal(t, sess, store.Get(1))
		})
	}
}

func TestStore_GoingUpClearsDeeperSelections(t *testing.T) {
	store := NewStore()
	store.ShowUniversityPath(1, domain.UniversityPath{University: "batna2", Semester: "semester_1", Module: 3})

	sess := store.ShowUniversityPath(1, domain.UniversityPath{University: "batna2", Module: -1})

	assert.Equal(t, domain.ViewSemesters, sess.View)
	assert.Equal(t, "batna2", sess.University)
	assert.Empty(t, sess.Semester)
	assert.Equal(t, -1, sess.Module)
}

func TestStore_SwitchingBranchClearsOtherBranch(t *testing.T) {
	store := NewStore()
	store.ShowUniversityPath(1, domain.UniversityPath{University: "batna2", Semester: "semester_1", Module: 0})

	sess := store.ShowSpecializationPath(1, domain.SpecializationPath{Specialization: "cese", Semester: "semester_5", Module: 1})

	assert.Equal(t, domain.ViewSpecResources, sess.View)
	assert.Empty(t, sess.University)
	assert.Equal(t, "cese", sess.Scope())
}

func TestStore_ChoosePathAndReset(t *testing.T) {
	store := NewStore()

	sess := store.ChoosePath(7, domain.PathSpecialite)
	assert.Equal(t, domain.ViewSpecializations, sess.View)

	sess = store.ChoosePath(7, domain.PathTroncCommun)
	assert.Equal(t, domain.ViewUniversities, sess.View)

	sess = store.Reset(7)
	assert.Equal(t, domain.NewSession(), sess)
}

func TestStore_FileSharingFlow(t *testing.T) {
	store := NewStore()
	store.ShowUniversityPath(5, domain.UniversityPath{University: "batna2", Module: -1})

	sess := store.StartFileSharing(5)
	assert.Equal(t, domain.ViewSendingFile, sess.View)
	assert.Nil(t, sess.PendingFile)

	sess = store.AttachFile(5, domain.PendingFile{FileID: "doc-1", FileName: "td.pdf"})
	require.NotNil(t, sess.PendingFile)
	assert.Equal(t, "doc-1", sess.PendingFile.FileID)

	sess = store.StartFeedback(5)
	assert.Equal(t, domain.ViewSendingFeedback, sess.View)
	assert.Nil(t, sess.PendingFile)
}

func TestMediaStash_TakeConsumes(t *testing.T) {
	stash := NewMediaStash()
	stash.Put(1, domain.Media{Type: domain.MediaPhoto, FileID: "p1"})
	stash.Put(1, domain.Media{Type: domain.MediaVideo, FileID: "v1"})

	_, ok := stash.Peek(1)
	assert.True(t, ok)

	m := stash.Take(1)
	require.NotNil(t, m)
	assert.Equal(t, domain.MediaVideo, m.Type)
	assert.Nil(t, stash.Take(1))
	assert.Nil(t, stash.Take(2))
}
