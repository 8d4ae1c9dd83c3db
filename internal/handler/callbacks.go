package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"

	"coursebot/internal/domain"
	"coursebot/internal/security"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	// Another callback already rendered the same menu
	if strings.Contains(errStr, "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}
	// Stale buttons on an old message
	if strings.Contains(errStr, "query is too old") {
		h.logger.Debug("Ignoring old callback query", zap.Int64("user_id", userID))
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}
	chatID := c.Chat().ID

	action, err := DecodeAction(callback.Data)
	if err != nil {
		h.logger.Warn("Unknown callback data",
			zap.String("data", cleanCallbackData(callback.Data)),
			zap.Int64("user_id", c.Sender().ID),
		)
		_ = c.Respond()
		return c.Send(msgUnknownCommand)
	}

	switch a := action.(type) {
	case domain.PathChoice:
		sess := h.sessions.ChoosePath(chatID, a.Path)
		text, markup := h.renderSession(sess)
		return h.show(c, text, markup)

	case domain.UniversityPath:
		h.sessions.ShowUniversityPath(chatID, a)
		text, markup := h.renderPath(branch{}, a.University, a.Semester, a.Module, a.Resource)
		return h.show(c, text, markup)

	case domain.SpecializationPath:
		h.sessions.ShowSpecializationPath(chatID, a)
		text, markup := h.renderPath(branch{specialization: true}, a.Specialization, a.Semester, a.Module, a.Resource)
		return h.show(c, text, markup)

	case domain.FileSelection:
		_ = c.Respond()
		return h.sendFile(c, a)

	case domain.BackAction:
		var sess domain.Session
		switch a.Target {
		case domain.ViewUniversities:
			sess = h.sessions.ChoosePath(chatID, domain.PathTroncCommun)
		case domain.ViewSpecializations:
			sess = h.sessions.ChoosePath(chatID, domain.PathSpecialite)
		default:
			sess = h.sessions.Reset(chatID)
		}
		text, markup := h.renderSession(sess)
		return h.show(c, text, markup)
	}

	_ = c.Respond()
	return c.Send(msgUnknownCommand)
}

// lookupFile resolves a file selection against the current catalog
func (h *Handler) lookupFile(sel domain.FileSelection) (domain.FileEntry, bool) {
	nav := h.navigator.Navigation()

	b := branch{specialization: sel.Specialization}
	scope, ok := b.find(nav, sel.Scope)
	if !ok {
		return domain.FileEntry{}, false
	}
	sem, ok := scope.FindSemester(sel.Semester)
	if !ok {
		return domain.FileEntry{}, false
	}
	module, ok := sem.Module(sel.Module)
	if !ok {
		return domain.FileEntry{}, false
	}

	// listings can change between render and click, so match by key
	for _, f := range h.resolver.ResolveFiles(sel.Scope, sel.Semester, module, sel.Resource) {
		if f.Key() == sel.File {
			return f, true
		}
	}
	return domain.FileEntry{}, false
}

func fileCaption(f domain.FileEntry) string {
	description := f.Description
	if description == "" {
		description = msgNoDescription
	}
	return f.Name + "\n\n" + description
}

// sendFile uploads the selected file followed by a confirmation
func (h *Handler) sendFile(c tele.Context, sel domain.FileSelection) error {
	userID := c.Sender().ID

	file, ok := h.lookupFile(sel)
	if !ok {
		h.logger.Warn("Selected file is no longer available",
			zap.Int64("user_id", userID),
			zap.String("scope", sel.Scope),
			zap.String("resource", sel.Resource),
			zap.String("file_key", sel.File),
		)
		return c.Send(msgError)
	}

	caption := fileCaption(file)
	if !security.MonitorResponse(caption) {
		h.logger.Warn("Suspicious content in file caption", zap.String("path", file.Path))
		return nil
	}

	doc := &tele.Document{
		File:     tele.FromDisk(h.resolver.FullPath(file)),
		FileName: filepath.Base(file.Path),
		Caption:  caption,
	}
	if err := c.Send(doc); err != nil {
		h.logger.Error("Failed to send file",
			zap.Int64("user_id", userID),
			zap.String("path", file.Path),
			zap.String("error", security.SanitizeForLogging(err.Error())),
		)
		if errors.Is(err, fs.ErrNotExist) {
			return c.Send(fmt.Sprintf(msgFileNotFound, file.Name))
		}
		return c.Send(fmt.Sprintf(msgFileError, file.Name))
	}

	if h.tracker != nil {
		h.tracker.TrackDownload(sel.Resource)
	}
	h.logger.Info("File sent",
		zap.Int64("user_id", userID),
		zap.String("path", file.Path),
	)

	success := fmt.Sprintf(msgFileSent, file.Name)
	if !security.MonitorResponse(success) {
		return nil
	}
	return c.Send(success)
}
