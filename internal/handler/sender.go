package handler

import (
	"context"
	"errors"
	"fmt"

	"coursebot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// TelegramSender delivers broadcast messages through the Bot API
type TelegramSender struct {
	messenger Messenger
}

// NewTelegramSender creates a broadcast transport
func NewTelegramSender(messenger Messenger) *TelegramSender {
	return &TelegramSender{messenger: messenger}
}

// Send delivers msg to one user. Refusals by the recipient wrap domain.ErrRecipientBlocked.
func (s *TelegramSender) Send(ctx context.Context, userID int64, msg domain.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var what interface{} = msg.Text
	if msg.Media != nil {
		what = mediaContent(*msg.Media, msg.Text)
	}

	var opts []interface{}
	if markup := linkMarkup(msg.Buttons); markup != nil {
		opts = append(opts, markup)
	}

	_, err := s.messenger.Send(tele.ChatID(userID), what, opts...)
	return classifySendError(err)
}

// mediaContent builds the sendable attachment with text as its caption
func mediaContent(m domain.Media, text string) interface{} {
	caption := text
	if caption == "" {
		caption = m.Caption
	}
	file := tele.File{FileID: m.FileID}

	switch m.Type {
	case domain.MediaPhoto:
		return &tele.Photo{File: file, Caption: caption}
	case domain.MediaVideo:
		return &tele.Video{File: file, Caption: caption}
	case domain.MediaAudio:
		return &tele.Audio{File: file, Caption: caption}
	default:
		return &tele.Document{File: file, Caption: caption}
	}
}

func linkMarkup(buttons []domain.LinkButton) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, markup.Row(markup.URL(b.Text, b.URL)))
	}
	markup.Inline(rows...)
	return markup
}

// classifySendError maps Bot API refusals to domain.ErrRecipientBlocked
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, tele.ErrBlockedByUser) {
		return fmt.Errorf("%w: %v", domain.ErrRecipientBlocked, err)
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: %v", domain.ErrRecipientBlocked, err)
	}
	return err
}
