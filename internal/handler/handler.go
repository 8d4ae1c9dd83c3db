package handler

import (
	"context"
	"errors"

	"coursebot/internal/catalog"
	"coursebot/internal/clock"
	"coursebot/internal/domain"
	"coursebot/internal/middleware"
	"coursebot/internal/service"
	"coursebot/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger sends messages to arbitrary chats. *tele.Bot implements it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Tracker records user-facing events
type Tracker interface {
	TrackDownload(resourceType string)
	TrackRefresh(totalFiles int, err error)
}

// Settings holds chat targets and broadcast decoration
type Settings struct {
	OwnerID           string
	FeedbackTarget    string
	FileSharingTarget string
	BroadcastButtons  []domain.LinkButton
}

// Deps groups everything the handlers need
type Deps struct {
	Messenger  Messenger
	Auth       *service.AuthService
	Registry   *service.RegistryService
	Broadcasts *service.BroadcastService
	Sessions   *session.Store
	Stash      *session.MediaStash
	Catalog    *catalog.Store
	Resolver   *catalog.Resolver
	Navigator  *catalog.Navigator
	Validator  service.MessageValidator
	Clock      clock.Clock
	Tracker    Tracker
	Settings   Settings
	Logger     *zap.Logger
}

// Handler manages all bot interactions
type Handler struct {
	ctx        context.Context
	messenger  Messenger
	auth       *service.AuthService
	registry   *service.RegistryService
	broadcasts *service.BroadcastService
	sessions   *session.Store
	stash      *session.MediaStash
	catalog    *catalog.Store
	resolver   *catalog.Resolver
	navigator  *catalog.Navigator
	validator  service.MessageValidator
	clock      clock.Clock
	tracker    Tracker
	settings   Settings
	logger     *zap.Logger
}

// NewHandler creates a new handler instance. ctx bounds long running work
// such as broadcasts and catalog refreshes.
func NewHandler(ctx context.Context, deps Deps) *Handler {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	return &Handler{
		ctx:        ctx,
		messenger:  deps.Messenger,
		auth:       deps.Auth,
		registry:   deps.Registry,
		broadcasts: deps.Broadcasts,
		sessions:   deps.Sessions,
		stash:      deps.Stash,
		catalog:    deps.Catalog,
		resolver:   deps.Resolver,
		navigator:  deps.Navigator,
		validator:  deps.Validator,
		clock:      deps.Clock,
		tracker:    deps.Tracker,
		settings:   deps.Settings,
		logger:     deps.Logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers(bot *tele.Bot) {
	// User commands
	bot.Handle("/start", h.handleStart)
	bot.Handle("/ing", h.handleMenu)
	bot.Handle("/help", h.handleHelp)
	bot.Handle("/about", h.handleAbout)
	bot.Handle("/subscribe", h.handleSubscribe)
	bot.Handle("/unsubscribe", h.handleUnsubscribe)
	bot.Handle("/feedback", h.handleFeedback)
	bot.Handle("/send", h.handleSend)
	bot.Handle("/cancel", h.handleCancel)

	// Owner commands
	admin := bot.Group()
	admin.Use(middleware.OwnerOnly(h.auth, h.logger))
	admin.Handle("/refresh", h.handleRefresh)
	admin.Handle("/users", h.handleUsers)
	admin.Handle("/block", h.handleBlock)
	admin.Handle("/unblock", h.handleUnblock)
	admin.Handle("/broadcast", h.broadcastCommand("/broadcast", domain.TargetAll))
	admin.Handle("/broadcast_subscribers", h.broadcastCommand("/broadcast_subscribers", domain.TargetSubscribers))
	admin.Handle("/broadcast_active", h.broadcastCommand("/broadcast_active", domain.TargetActive))
	admin.Handle("/broadcast_stats", h.handleBroadcastStats)
	admin.Handle("/broadcast_history", h.handleBroadcastHistory)

	// Messages
	bot.Handle(tele.OnText, h.handleText)
	bot.Handle(tele.OnDocument, h.handleDocument)
	bot.Handle(tele.OnPhoto, h.handleMedia)
	bot.Handle(tele.OnVideo, h.handleMedia)
	bot.Handle(tele.OnAudio, h.handleMedia)

	// Callback queries (inline buttons)
	bot.Handle(tele.OnCallback, h.handleCallback)
}

// show edits the message behind a callback, or sends a new one for commands
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// chatRecipient addresses a chat by numeric ID or @username
type chatRecipient string

func (r chatRecipient) Recipient() string {
	return string(r)
}

// forward sends what to the first target that accepts it
func (h *Handler) forward(what interface{}, targets ...string) (string, error) {
	var lastErr error
	for _, target := range targets {
		if target == "" {
			continue
		}
		if _, err := h.messenger.Send(chatRecipient(target), what); err != nil {
			h.logger.Warn("Failed to forward message",
				zap.String("target", target),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return target, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no forward target configured")
	}
	return "", lastErr
}
