package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coursebot/internal/catalog"
	"coursebot/internal/domain"
	"coursebot/internal/security"
	"coursebot/internal/service"
	"coursebot/internal/session"
	"coursebot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

const ownerID int64 = 1

type recordingTracker struct {
	downloads []string
	refreshes []int
}

func (t *recordingTracker) TrackDownload(resourceType string) {
	t.downloads = append(t.downloads, resourceType)
}

func (t *recordingTracker) TrackRefresh(totalFiles int, err error) {
	if err == nil {
		t.refreshes = append(t.refreshes, totalFiles)
	}
}

type fixture struct {
	handler   *Handler
	messenger *testutil.FakeMessenger
	registry  *service.RegistryService
	sessions  *session.Store
	stash     *session.MediaStash
	tracker   *recordingTracker
	clock     *testutil.FakeClock
	root      string
}

func testNavigation() *domain.Navigation {
	return &domain.Navigation{
		Universities: []domain.Scope{{
			Key:  "batna2",
			Name: "Batna 2",
			Semesters: []domain.Semester{{
				Key:     "semester_1",
				Name:    "Semester 1",
				Modules: []string{"Analyse 1", "Algèbre 1"},
			}},
		}},
		Specializations: []domain.Scope{{
			Key:  "cese",
			Name: "CESE",
			Semesters: []domain.Semester{{
				Key:     "semester_5",
				Name:    "Semester 5",
				Modules: []string{"Automatique"},
			}},
		}},
	}
}

func newFixture(t *testing.T, users ...int64) *fixture {
	t.Helper()

	root := t.TempDir()
	writeContent(t, root, "universities", "batna2", "semester_1", "td", "Analyse 1", "Serie 1.pdf")
	writeContent(t, root, "universities", "batna2", "semester_1", "td", "Analyse 1", "Serie 2.pdf")

	logger := testutil.NewTestLogger()
	clk := testutil.NewFakeClock(testutil.FixedTime)

	userRepo := new(testutil.MockUserRepository)
	userRepo.On("SaveUser", mock.Anything).Return(nil).Maybe()
	registry := service.NewRegistryService(userRepo, clk, logger)
	for _, id := range users {
		registry.RegisterUser(domain.UserInfo{ID: id, FirstName: fmt.Sprintf("User%d", id)})
	}

	broadcastRepo := new(testutil.MockBroadcastRepository)
	broadcastRepo.On("SaveBroadcast", mock.Anything).Return(nil).Maybe()

	messenger := &testutil.FakeMessenger{Errors: map[string]error{}}
	broadcasts := service.NewBroadcastService(
		registry,
		broadcastRepo,
		NewTelegramSender(messenger),
		security.NewValidator(0),
		service.NewLimiter(20, 100, clk),
		nil,
		clk,
		logger,
	)

	store := catalog.NewStore(filepath.Join(root, "file_mapping.json"), catalog.NewDirScanner(root, logger), logger)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	sessions := session.NewStore()
	stash := session.NewMediaStash()
	tracker := &recordingTracker{}

	h := NewHandler(context.Background(), Deps{
		Messenger:  messenger,
		Auth:       service.NewAuthService(fmt.Sprint(ownerID)),
		Registry:   registry,
		Broadcasts: broadcasts,
		Sessions:   sessions,
		Stash:      stash,
		Catalog:    store,
		Resolver:   catalog.NewResolver(store, root, nil),
		Navigator:  catalog.NewNavigator(testNavigation(), store),
		Validator:  security.NewValidator(0),
		Clock:      clk,
		Tracker:    tracker,
		Settings: Settings{
			OwnerID:           fmt.Sprint(ownerID),
			FeedbackTarget:    "-100200",
			FileSharingTarget: "-100300",
		},
		Logger: logger,
	})

	return &fixture{
		handler:   h,
		messenger: messenger,
		registry:  registry,
		sessions:  sessions,
		stash:     stash,
		tracker:   tracker,
		clock:     clk,
		root:      root,
	}
}

func writeContent(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
}

// fileKey returns the callback key of a fixture file under batna2/semester_1/Analyse 1/td
func fileKey(t *testing.T, f *fixture, name string) string {
	t.Helper()
	for _, entry := range f.handler.resolver.ResolveFiles("batna2", "semester_1", "Analyse 1", "td") {
		if entry.Name == name {
			return entry.Key()
		}
	}
	t.Fatalf("file %q not in catalog", name)
	return ""
}

func TestHandler_MenuShowsPaths(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeMessage(10, "/ing")

	require.NoError(t, f.handler.handleMenu(c))

	assert.Equal(t, msgWelcome, c.LastText())
	markup := c.LastMarkup()
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "p|tronc_commun", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "p|specialite", markup.InlineKeyboard[0][1].Data)
}

func TestHandler_NavigateToFiles(t *testing.T) {
	f := newFixture(t)
	const chatID = 10

	steps := []struct {
		data     string
		text     string
		view     domain.View
		firstBtn string
	}{
		{
			data:     "p|tronc_commun",
			text:     msgTroncCommun,
			view:     domain.ViewUniversities,
			firstBtn: "u|batna2",
		},
		{
			data:     "u|batna2",
			text:     fmt.Sprintf(msgScopeSemesters, "Batna 2"),
			view:     domain.ViewSemesters,
			firstBtn: "u|batna2|semester_1",
		},
		{
			data:     "u|batna2|semester_1",
			text:     fmt.Sprintf(msgSemesterModules, "Semester 1"),
			view:     domain.ViewModules,
			firstBtn: "u|batna2|semester_1|0",
		},
		{
			data:     "u|batna2|semester_1|0",
			text:     fmt.Sprintf(msgModuleResources, "Analyse 1"),
			view:     domain.ViewResources,
			firstBtn: "u|batna2|semester_1|0|cour",
		},
		{
			data:     "u|batna2|semester_1|0|td",
			text:     fmt.Sprintf(msgFilesAvailable, "📑", "TD", "Analyse 1"),
			view:     domain.ViewResources,
			firstBtn: "f|u|batna2|semester_1|0|td|" + fileKey(t, f, "Serie 1.pdf"),
		},
	}

	for _, step := range steps {
		t.Run(step.data, func(t *testing.T) {
			c := testutil.NewFakeCallback(chatID, step.data)

			require.NoError(t, f.handler.handleCallback(c))

			assert.Equal(t, step.text, c.LastEdit())
			assert.Equal(t, 1, c.Answered)
			assert.Equal(t, step.view, f.sessions.Get(chatID).View)

			markup := c.LastMarkup()
			require.NotNil(t, markup)
			assert.Equal(t, step.firstBtn, markup.InlineKeyboard[0][0].Data)
		})
	}
}

func TestHandler_FileListSkipsMissingFiles(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.root, "universities", "batna2", "semester_1", "td", "Analyse 1", "Serie 1.pdf")))

	c := testutil.NewFakeCallback(10, "u|batna2|semester_1|0|td")
	require.NoError(t, f.handler.handleCallback(c))

	markup := c.LastMarkup()
	require.NotNil(t, markup)
	// one file row plus the back row
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "📄 Serie 2.pdf", markup.InlineKeyboard[0][0].Text)
}

func TestHandler_EmptyResource(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "u|batna2|semester_1|1|exam")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Equal(t, fmt.Sprintf(msgNoFiles, "🎓", "Exam", "Algèbre 1"), c.LastEdit())
}

func TestHandler_UnknownScopeFallsBack(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "u|oran|semester_1|0")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Equal(t, msgTroncCommun, c.LastEdit())
}

func TestHandler_SendFile(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "f|u|batna2|semester_1|0|td|"+fileKey(t, f, "Serie 2.pdf"))

	require.NoError(t, f.handler.handleCallback(c))

	require.Len(t, c.Sent, 2)
	doc, ok := c.Sent[0].(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "Serie 2.pdf", doc.FileName)
	assert.Equal(t, "Serie 2.pdf\n\nSerie 2", doc.Caption)
	assert.Equal(t, fmt.Sprintf(msgFileSent, "Serie 2.pdf"), c.LastText())
	assert.Equal(t, []string{"td"}, f.tracker.downloads)
}

func TestHandler_SendFileUnknownKey(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "f|u|batna2|semester_1|0|td|00000000")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Equal(t, msgError, c.LastText())
	assert.Empty(t, f.tracker.downloads)
}

func TestHandler_SendFileAfterListingChanged(t *testing.T) {
	f := newFixture(t)

	list := testutil.NewFakeCallback(10, "u|batna2|semester_1|0|td")
	require.NoError(t, f.handler.handleCallback(list))
	markup := list.LastMarkup()
	require.NotNil(t, markup)
	first := markup.InlineKeyboard[0][0].Data
	second := markup.InlineKeyboard[1][0].Data

	// the first file disappears after the buttons were rendered
	require.NoError(t, os.Remove(filepath.Join(f.root, "universities", "batna2", "semester_1", "td", "Analyse 1", "Serie 1.pdf")))

	stale := testutil.NewFakeCallback(10, first)
	require.NoError(t, f.handler.handleCallback(stale))
	assert.Equal(t, msgError, stale.LastText())
	assert.Empty(t, f.tracker.downloads)

	c := testutil.NewFakeCallback(10, second)
	require.NoError(t, f.handler.handleCallback(c))
	require.Len(t, c.Sent, 2)
	doc, ok := c.Sent[0].(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "Serie 2.pdf", doc.FileName)
}

func TestHandler_UnknownCallback(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "next_word")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Equal(t, msgUnknownCommand, c.LastText())
	assert.Equal(t, 1, c.Answered)
}

func TestHandler_EditNotModified(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "b|main_menu")
	c.EditErr = errors.New("telegram: Bad Request: message is not modified (400)")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Empty(t, c.Sent)
	assert.Equal(t, 1, c.Answered)
}

func TestHandler_EditFailureSendsNew(t *testing.T) {
	f := newFixture(t)
	c := testutil.NewFakeCallback(10, "b|universities")
	c.EditErr = errors.New("telegram: Bad Request: message to edit not found (400)")

	require.NoError(t, f.handler.handleCallback(c))

	assert.Equal(t, msgTroncCommun, c.LastText())
}

func TestHandler_Feedback(t *testing.T) {
	t.Run("forwarded to feedback channel", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.handler.handleFeedback(testutil.NewFakeMessage(10, "/feedback")))

		c := testutil.NewFakeMessage(10, "The TD of week 3 is missing")
		require.NoError(t, f.handler.handleText(c))

		require.Len(t, f.messenger.Sent, 1)
		assert.Equal(t, "-100200", f.messenger.Sent[0].To)
		assert.Contains(t, f.messenger.Sent[0].What, "The TD of week 3 is missing")
		assert.Equal(t, msgFeedbackSent, c.LastText())
		assert.Equal(t, domain.ViewMainMenu, f.sessions.Get(10).View)
	})

	t.Run("falls back to owner", func(t *testing.T) {
		f := newFixture(t)
		f.messenger.Errors["-100200"] = errors.New("chat not found")
		require.NoError(t, f.handler.handleFeedback(testutil.NewFakeMessage(10, "/feedback")))

		c := testutil.NewFakeMessage(10, "hello")
		require.NoError(t, f.handler.handleText(c))

		require.Len(t, f.messenger.Sent, 1)
		assert.Equal(t, "1", f.messenger.Sent[0].To)
		assert.Equal(t, msgFeedbackSent, c.LastText())
	})

	t.Run("unsafe text is rejected and the flow stays open", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.handler.handleFeedback(testutil.NewFakeMessage(10, "/feedback")))

		c := testutil.NewFakeMessage(10, "<script>alert(1)</script>")
		require.NoError(t, f.handler.handleText(c))

		assert.Empty(t, f.messenger.Sent)
		assert.Equal(t, fmt.Sprintf(msgInputRejected, "message contains unsafe content"), c.LastText())
		assert.Equal(t, domain.ViewSendingFeedback, f.sessions.Get(10).View)

		retry := testutil.NewFakeMessage(10, "The TD of week 3 is missing")
		require.NoError(t, f.handler.handleText(retry))
		require.Len(t, f.messenger.Sent, 1)
		assert.Equal(t, msgFeedbackSent, retry.LastText())
	})

	t.Run("text outside a flow is ignored", func(t *testing.T) {
		f := newFixture(t)
		c := testutil.NewFakeMessage(10, "hello")

		require.NoError(t, f.handler.handleText(c))

		assert.Empty(t, c.Sent)
		assert.Empty(t, f.messenger.Sent)
	})
}

func TestHandler_ShareFile(t *testing.T) {
	f := newFixture(t)
	const chatID = 10

	require.NoError(t, f.handler.handleSend(testutil.NewFakeMessage(chatID, "/send")))

	early := testutil.NewFakeMessage(chatID, "Exam 2023")
	require.NoError(t, f.handler.handleText(early))
	assert.Equal(t, msgSendExpectedFile, early.LastText())

	doc := testutil.NewFakeMessage(chatID, "")
	doc.Msg.Document = &tele.Document{File: tele.File{FileID: "doc-1"}, FileName: "exam.pdf"}
	require.NoError(t, f.handler.handleDocument(doc))
	assert.Equal(t, msgSendNamePrompt, doc.LastText())

	name := testutil.NewFakeMessage(chatID, "Exam 2023")
	require.NoError(t, f.handler.handleText(name))

	require.Len(t, f.messenger.Sent, 1)
	assert.Equal(t, "-100300", f.messenger.Sent[0].To)
	shared, ok := f.messenger.Sent[0].What.(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "doc-1", shared.FileID)
	assert.Contains(t, shared.Caption, "Exam 2023")
	assert.Equal(t, msgFileShared, name.LastText())
	assert.Equal(t, domain.ViewMainMenu, f.sessions.Get(chatID).View)
}

func TestHandler_ShareFileRejectsSpamName(t *testing.T) {
	f := newFixture(t)
	const chatID = 10

	require.NoError(t, f.handler.handleSend(testutil.NewFakeMessage(chatID, "/send")))
	doc := testutil.NewFakeMessage(chatID, "")
	doc.Msg.Document = &tele.Document{File: tele.File{FileID: "doc-1"}, FileName: "exam.pdf"}
	require.NoError(t, f.handler.handleDocument(doc))

	name := testutil.NewFakeMessage(chatID, "Click here to win")
	require.NoError(t, f.handler.handleText(name))

	assert.Empty(t, f.messenger.Sent)
	assert.Equal(t, fmt.Sprintf(msgInputRejected, "message looks like spam"), name.LastText())
	sess := f.sessions.Get(chatID)
	assert.Equal(t, domain.ViewSendingFile, sess.View)
	require.NotNil(t, sess.PendingFile)
	assert.Equal(t, "doc-1", sess.PendingFile.FileID)
}

func TestHandler_Subscribe(t *testing.T) {
	f := newFixture(t, 10)

	c := testutil.NewFakeMessage(10, "/subscribe")
	require.NoError(t, f.handler.handleSubscribe(c))
	assert.Equal(t, msgSubscribed, c.LastText())

	require.NoError(t, f.handler.handleSubscribe(c))
	assert.Equal(t, msgAlreadySubscribed, c.LastText())

	require.NoError(t, f.handler.handleUnsubscribe(c))
	assert.Equal(t, msgUnsubscribed, c.LastText())
	assert.False(t, f.registry.IsSubscribed(10))
}

func TestHandler_SubscribeBlockedUser(t *testing.T) {
	f := newFixture(t, 10)
	require.True(t, f.registry.Block(10))

	c := testutil.NewFakeMessage(10, "/subscribe")
	require.NoError(t, f.handler.handleSubscribe(c))

	assert.Equal(t, msgSubscribeBlocked, c.LastText())
	assert.False(t, f.registry.IsSubscribed(10))
	assert.Equal(t, 0, f.registry.Counts().Subscribers)
}

func TestHandler_UsersUsesInjectedClock(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		label   string
	}{
		{name: "same day", advance: time.Hour, label: "(last seen today)"},
		{name: "next day", advance: 24 * time.Hour, label: "(last seen yesterday)"},
		{name: "weeks later", advance: 30 * 24 * time.Hour, label: "(last seen 1 Jun)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, ownerID, 2)
			f.clock.Advance(tt.advance)

			c := testutil.NewFakeMessage(ownerID, "/users")
			require.NoError(t, f.handler.handleUsers(c))

			assert.Contains(t, c.LastText(), "• 2 User2 "+tt.label)
		})
	}
}

func TestHandler_MediaStash(t *testing.T) {
	t.Run("owner media is stashed", func(t *testing.T) {
		f := newFixture(t)
		c := testutil.NewFakeMessage(ownerID, "")
		c.Msg.Photo = &tele.Photo{File: tele.File{FileID: "photo-1"}}

		require.NoError(t, f.handler.handleMedia(c))

		media, ok := f.stash.Peek(ownerID)
		require.True(t, ok)
		assert.Equal(t, domain.MediaPhoto, media.Type)
		assert.Equal(t, fmt.Sprintf(msgMediaStashed, "Photo"), c.LastText())
	})

	t.Run("other users are ignored", func(t *testing.T) {
		f := newFixture(t)
		c := testutil.NewFakeMessage(10, "")
		c.Msg.Photo = &tele.Photo{File: tele.File{FileID: "photo-1"}}

		require.NoError(t, f.handler.handleMedia(c))

		_, ok := f.stash.Peek(10)
		assert.False(t, ok)
		assert.Empty(t, c.Sent)
	})
}

func TestHandler_Broadcast(t *testing.T) {
	f := newFixture(t, ownerID, 2, 3)
	f.messenger.Errors["3"] = tele.ErrBlockedByUser
	f.stash.Put(ownerID, domain.Media{Type: domain.MediaPhoto, FileID: "photo-1"})

	c := testutil.NewFakeMessage(ownerID, "/broadcast Exams moved\nto Monday")
	require.NoError(t, f.handler.broadcastCommand("/broadcast", domain.TargetAll)(c))

	require.Len(t, f.messenger.Sent, 2)
	photo, ok := f.messenger.Sent[1].What.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "Exams moved\nto Monday", photo.Caption)

	assert.Contains(t, c.LastText(), "Broadcast #1 completed")
	assert.Contains(t, c.LastText(), "📨 Sent: 2")
	assert.Contains(t, c.LastText(), "🚫 Blocked: 1")
	assert.True(t, f.registry.IsBlocked(3))

	_, stashed := f.stash.Peek(ownerID)
	assert.False(t, stashed)
}

func TestHandler_BroadcastRejectedKeepsMedia(t *testing.T) {
	f := newFixture(t, ownerID, 2)
	f.stash.Put(ownerID, domain.Media{Type: domain.MediaVideo, FileID: "video-1"})

	c := testutil.NewFakeMessage(ownerID, "/broadcast <script>alert(1)</script>")
	require.NoError(t, f.handler.broadcastCommand("/broadcast", domain.TargetAll)(c))

	assert.Contains(t, c.LastText(), "Broadcast rejected")
	assert.Empty(t, f.messenger.Sent)

	media, ok := f.stash.Peek(ownerID)
	require.True(t, ok)
	assert.Equal(t, "video-1", media.FileID)
}

func TestHandler_BroadcastUsage(t *testing.T) {
	f := newFixture(t, ownerID)
	c := testutil.NewFakeMessage(ownerID, "/broadcast_active")

	require.NoError(t, f.handler.broadcastCommand("/broadcast_active", domain.TargetActive)(c))

	assert.Equal(t, fmt.Sprintf(msgBroadcastUsage, "/broadcast_active"), c.LastText())
}

func TestHandler_BlockAndUnblock(t *testing.T) {
	f := newFixture(t, ownerID, 2)

	c := testutil.NewFakeMessage(ownerID, "/block 2")
	require.NoError(t, f.handler.handleBlock(c))
	assert.Equal(t, fmt.Sprintf(msgUserBlocked, 2), c.LastText())
	assert.True(t, f.registry.IsBlocked(2))

	c = testutil.NewFakeMessage(ownerID, "/unblock 2")
	require.NoError(t, f.handler.handleUnblock(c))
	assert.False(t, f.registry.IsBlocked(2))

	c = testutil.NewFakeMessage(ownerID, "/block 99")
	require.NoError(t, f.handler.handleBlock(c))
	assert.Equal(t, fmt.Sprintf(msgUserUnknown, 99), c.LastText())

	c = testutil.NewFakeMessage(ownerID, "/block someone")
	require.NoError(t, f.handler.handleBlock(c))
	assert.Equal(t, fmt.Sprintf(msgBlockUsage, "/block"), c.LastText())
}

func TestHandler_Refresh(t *testing.T) {
	f := newFixture(t)
	writeContent(t, f.root, "specializations", "cese", "semester_5", "exam", "Automatique", "Exam 2023.pdf")

	c := testutil.NewFakeMessage(ownerID, "/refresh")
	require.NoError(t, f.handler.handleRefresh(c))

	assert.Equal(t, fmt.Sprintf(msgRefreshed, 3, 2), c.LastText())
	assert.Equal(t, []int{3}, f.tracker.refreshes)
}
