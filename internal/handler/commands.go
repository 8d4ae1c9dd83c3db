package handler

import (
	"fmt"
	"strings"
	"unicode"

	"coursebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// commandPayload returns everything after the command word, newlines included
func commandPayload(text string) string {
	text = strings.TrimSpace(text)
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx:])
}

// describeUser formats the sender for forwarded messages
func describeUser(u *tele.User) (fullName, username string) {
	fullName = u.FirstName
	if u.LastName != "" {
		fullName += " " + u.LastName
	}
	username = "No username"
	if u.Username != "" {
		username = "@" + u.Username
	}
	return fullName, username
}

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)

	h.sessions.Reset(c.Chat().ID)
	return c.Send(fmt.Sprintf(msgGreeting, c.Sender().FirstName))
}

// handleMenu handles /ing and shows the main menu
func (h *Handler) handleMenu(c tele.Context) error {
	sess := h.sessions.Reset(c.Chat().ID)
	text, markup := h.renderSession(sess)
	return c.Send(text, markup)
}

func (h *Handler) handleHelp(c tele.Context) error {
	return c.Send(msgHelp)
}

func (h *Handler) handleAbout(c tele.Context) error {
	return c.Send(msgAbout)
}

func (h *Handler) handleSubscribe(c tele.Context) error {
	if h.registry.IsBlocked(c.Sender().ID) {
		return c.Send(msgSubscribeBlocked)
	}
	if h.registry.Subscribe(c.Sender().ID) {
		return c.Send(msgSubscribed)
	}
	return c.Send(msgAlreadySubscribed)
}

func (h *Handler) handleUnsubscribe(c tele.Context) error {
	if h.registry.Unsubscribe(c.Sender().ID) {
		return c.Send(msgUnsubscribed)
	}
	return c.Send(msgNotSubscribed)
}

func (h *Handler) handleFeedback(c tele.Context) error {
	h.sessions.StartFeedback(c.Chat().ID)
	return c.Send(msgFeedbackPrompt)
}

func (h *Handler) handleSend(c tele.Context) error {
	h.sessions.StartFileSharing(c.Chat().ID)
	return c.Send(msgSendPrompt)
}

func (h *Handler) handleCancel(c tele.Context) error {
	h.sessions.Reset(c.Chat().ID)
	return c.Send(msgCancelled)
}

// handleText handles plain text based on the chat's current view
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	sess := h.sessions.Get(c.Chat().ID)
	switch sess.View {
	case domain.ViewSendingFeedback:
		return h.forwardFeedback(c, text)
	case domain.ViewSendingFile:
		if sess.PendingFile == nil {
			return c.Send(msgSendExpectedFile)
		}
		return h.forwardSharedFile(c, *sess.PendingFile, text)
	}
	return nil
}

func (h *Handler) forwardFeedback(c tele.Context, text string) error {
	if text == "" {
		return c.Send(msgFeedbackPrompt)
	}
	text, err := h.checkInput(c, text)
	if err != nil {
		// session kept so the user can try again
		return c.Send(fmt.Sprintf(msgInputRejected, rejectionReason(err)))
	}

	sender := c.Sender()
	fullName, username := describeUser(sender)
	message := fmt.Sprintf(msgFeedbackForward, fullName, username, sender.ID, text)

	_, err = h.forward(message, h.settings.FeedbackTarget, h.settings.OwnerID)
	h.sessions.Reset(c.Chat().ID)
	if err != nil {
		h.logger.Error("Failed to deliver feedback", zap.Int64("user_id", sender.ID), zap.Error(err))
		return c.Send(msgFeedbackFailed)
	}

	h.logger.Info("Feedback forwarded", zap.Int64("user_id", sender.ID))
	return c.Send(msgFeedbackSent)
}

func (h *Handler) forwardSharedFile(c tele.Context, file domain.PendingFile, name string) error {
	if name == "" {
		return c.Send(msgSendNamePrompt)
	}
	name, err := h.checkInput(c, name)
	if err != nil {
		return c.Send(fmt.Sprintf(msgInputRejected, rejectionReason(err)))
	}

	sender := c.Sender()
	fullName, username := describeUser(sender)
	doc := &tele.Document{
		File:     tele.File{FileID: file.FileID},
		FileName: file.FileName,
		Caption:  fmt.Sprintf(msgFileForward, fullName, username, sender.ID, name),
	}

	_, err = h.forward(doc, h.settings.FileSharingTarget, h.settings.OwnerID)
	h.sessions.Reset(c.Chat().ID)
	if err != nil {
		h.logger.Error("Failed to share file", zap.Int64("user_id", sender.ID), zap.Error(err))
		return c.Send(msgFileShareFailed)
	}

	h.logger.Info("File shared",
		zap.Int64("user_id", sender.ID),
		zap.String("file_name", file.FileName),
	)
	return c.Send(msgFileShared)
}

// checkInput runs user text through the validator and returns its sanitized form
func (h *Handler) checkInput(c tele.Context, text string) (string, error) {
	if h.validator == nil {
		return text, nil
	}
	clean, err := h.validator.Validate(text)
	if err != nil {
		h.logger.Warn("User input rejected",
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
		return "", err
	}
	return clean, nil
}

// rejectionReason strips the sentinel prefix from a validation error
func rejectionReason(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidMessage.Error()+": ")
}

// handleDocument feeds the /send flow, or stashes owner broadcast attachments
func (h *Handler) handleDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}

	sess := h.sessions.Get(c.Chat().ID)
	if sess.View == domain.ViewSendingFile {
		h.sessions.AttachFile(c.Chat().ID, domain.PendingFile{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			FileSize: msg.Document.FileSize,
		})
		return c.Send(msgSendNamePrompt)
	}

	return h.handleMedia(c)
}
