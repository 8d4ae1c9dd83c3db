package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coursebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	historyLimit = 10
	usersLimit   = 50
)

var mediaLabels = map[domain.MediaType]string{
	domain.MediaPhoto:    "Photo",
	domain.MediaVideo:    "Video",
	domain.MediaAudio:    "Audio",
	domain.MediaDocument: "Document",
}

// mediaFromMessage extracts a broadcast attachment from an incoming message
func mediaFromMessage(m *tele.Message) (domain.Media, bool) {
	if m == nil {
		return domain.Media{}, false
	}
	switch {
	case m.Photo != nil:
		return domain.Media{Type: domain.MediaPhoto, FileID: m.Photo.FileID, Caption: m.Caption}, true
	case m.Video != nil:
		return domain.Media{Type: domain.MediaVideo, FileID: m.Video.FileID, Caption: m.Caption}, true
	case m.Audio != nil:
		return domain.Media{Type: domain.MediaAudio, FileID: m.Audio.FileID, Caption: m.Caption}, true
	case m.Document != nil:
		return domain.Media{Type: domain.MediaDocument, FileID: m.Document.FileID, Caption: m.Caption}, true
	}
	return domain.Media{}, false
}

// handleMedia stashes owner media for the next broadcast. Other users are ignored.
func (h *Handler) handleMedia(c tele.Context) error {
	if !h.auth.IsOwner(c.Sender().ID) {
		return nil
	}
	media, ok := mediaFromMessage(c.Message())
	if !ok {
		return nil
	}

	h.stash.Put(c.Chat().ID, media)
	h.logger.Info("Broadcast media stashed",
		zap.Int64("chat_id", c.Chat().ID),
		zap.String("type", string(media.Type)),
	)
	return c.Send(fmt.Sprintf(msgMediaStashed, mediaLabels[media.Type]))
}

func (h *Handler) handleRefresh(c tele.Context) error {
	if err := c.Send(msgRefreshing); err != nil {
		h.logger.Warn("Failed to send refresh notice", zap.Error(err))
	}

	result, err := h.catalog.Refresh(h.ctx)
	if h.tracker != nil {
		total := 0
		if result != nil {
			total = result.TotalFiles
		}
		h.tracker.TrackRefresh(total, err)
	}
	if err != nil {
		h.logger.Error("Failed to refresh file mapping", zap.Error(err))
		return c.Send(msgRefreshFailed)
	}

	h.resolver.Invalidate()
	return c.Send(fmt.Sprintf(msgRefreshed, result.TotalFiles, result.Scopes))
}

func (h *Handler) handleUsers(c tele.Context) error {
	filter, ok := domain.ParseUserFilter(commandPayload(c.Text()))
	if !ok {
		return c.Send(msgUsersUsage)
	}

	users := h.registry.ListUsers(filter, usersLimit)
	counts := h.registry.Counts()
	return c.Send(formatUsers(filter, users, counts, h.clock.Now()))
}

func formatUsers(filter domain.UserFilter, users []domain.UserProfile, counts domain.RegistryCounts, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Users (%s): showing %d\n", filter, len(users))
	fmt.Fprintf(&b, "Total %d · Subscribers %d · Active %d · Blocked %d\n\n",
		counts.Total, counts.Subscribers, counts.Active, counts.Blocked)

	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		fmt.Fprintf(&b, "• %d %s", u.ID, name)
		if u.Username != "" {
			fmt.Fprintf(&b, " @%s", u.Username)
		}
		if u.IsSubscriber {
			b.WriteString(" 🔔")
		}
		if u.IsBlocked {
			b.WriteString(" 🚫")
		}
		fmt.Fprintf(&b, " (last seen %s)\n", domain.DayLabel(u.LastActivityAt, now))
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseUserID(text string) (int64, bool) {
	id, err := strconv.ParseInt(commandPayload(text), 10, 64)
	return id, err == nil
}

func (h *Handler) handleBlock(c tele.Context) error {
	id, ok := parseUserID(c.Text())
	if !ok {
		return c.Send(fmt.Sprintf(msgBlockUsage, "/block"))
	}
	if !h.registry.Block(id) {
		return c.Send(fmt.Sprintf(msgUserUnknown, id))
	}
	return c.Send(fmt.Sprintf(msgUserBlocked, id))
}

func (h *Handler) handleUnblock(c tele.Context) error {
	id, ok := parseUserID(c.Text())
	if !ok {
		return c.Send(fmt.Sprintf(msgBlockUsage, "/unblock"))
	}
	if !h.registry.Unblock(id) {
		return c.Send(fmt.Sprintf(msgUserUnknown, id))
	}
	return c.Send(fmt.Sprintf(msgUserUnblocked, id))
}

// broadcastCommand builds the handler for one broadcast audience
func (h *Handler) broadcastCommand(command string, target domain.TargetType) tele.HandlerFunc {
	return func(c tele.Context) error {
		message := commandPayload(c.Text())
		if message == "" {
			return c.Send(fmt.Sprintf(msgBroadcastUsage, command))
		}

		chatID := c.Chat().ID
		media := h.stash.Take(chatID)

		if err := c.Send(fmt.Sprintf(msgBroadcastStart, target)); err != nil {
			h.logger.Warn("Failed to send broadcast notice", zap.Error(err))
		}

		result, err := h.broadcasts.SendBroadcast(h.ctx, message, domain.BroadcastOptions{
			AdminID:    c.Sender().ID,
			TargetType: target,
			Priority:   domain.PriorityNormal,
			Media:      media,
			Buttons:    h.settings.BroadcastButtons,
		})

		switch {
		case errors.Is(err, domain.ErrInvalidMessage):
			h.restoreMedia(chatID, media)
			return c.Send(fmt.Sprintf(msgInvalidMessage, err))
		case errors.Is(err, domain.ErrRateLimited):
			h.restoreMedia(chatID, media)
			return c.Send(msgRateLimited)
		case err != nil:
			h.logger.Error("Broadcast failed", zap.Error(err))
			if result == nil {
				return c.Send(msgError)
			}
			return c.Send(formatResult("⚠️ Broadcast #%d interrupted", result))
		}
		return c.Send(formatResult("✅ Broadcast #%d completed", result))
	}
}

// restoreMedia puts back an attachment whose broadcast never started
func (h *Handler) restoreMedia(chatID int64, media *domain.Media) {
	if media != nil {
		h.stash.Put(chatID, *media)
	}
}

func formatResult(headline string, r *domain.BroadcastResult) string {
	rate := 0.0
	if r.TargetCount > 0 {
		rate = float64(r.SentCount) / float64(r.TargetCount) * 100
	}
	return fmt.Sprintf(headline, r.BroadcastID) + fmt.Sprintf(
		"\n\n🎯 Targets: %d\n📨 Sent: %d\n❌ Failed: %d\n🚫 Blocked: %d\n📈 Success rate: %.1f%%",
		r.TargetCount, r.SentCount, r.FailedCount, r.BlockedCount, rate,
	)
}

func (h *Handler) handleBroadcastStats(c tele.Context) error {
	return c.Send(formatStats(h.broadcasts.Stats()))
}

func formatStats(s domain.BroadcastStats) string {
	var b strings.Builder
	b.WriteString("📊 Broadcast statistics\n\n")
	fmt.Fprintf(&b, "👥 Users: %d\n🔔 Subscribers: %d\n🟢 Active (7d): %d\n🚫 Blocked: %d\n\n",
		s.Registry.Total, s.Registry.Subscribers, s.Registry.Active, s.Registry.Blocked)
	fmt.Fprintf(&b, "📨 Broadcasts: %d completed of %d\n", s.TotalBroadcasts, s.HistoryCount)
	fmt.Fprintf(&b, "✅ Sent: %d\n❌ Failed: %d\n📈 Average success: %.1f%%\n\n",
		s.TotalSent, s.TotalFailed, s.AverageSuccess)
	fmt.Fprintf(&b, "⏱ Rate limit: %d/%d per minute, %d/%d per hour",
		s.RateLimit.SentLastMinute, s.RateLimit.MaxPerMinute,
		s.RateLimit.SentLastHour, s.RateLimit.MaxPerHour)

	for _, t := range []domain.TargetType{domain.TargetAll, domain.TargetSubscribers, domain.TargetActive} {
		if n := s.TargetTypeCounts[t]; n > 0 {
			fmt.Fprintf(&b, "\n• %s: %d", t, n)
		}
	}
	return b.String()
}

func (h *Handler) handleBroadcastHistory(c tele.Context) error {
	return c.Send(formatHistory(h.broadcasts.History(historyLimit)))
}

func formatHistory(records []domain.BroadcastRecord) string {
	if len(records) == 0 {
		return "📭 No broadcasts yet."
	}

	var b strings.Builder
	b.WriteString("📜 Recent broadcasts\n")
	for _, r := range records {
		preview := []rune(r.Message)
		if len(preview) > 40 {
			preview = append(preview[:40], '…')
		}
		fmt.Fprintf(&b, "\n#%d · %s · %s · %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.TargetType, r.Status)
		fmt.Fprintf(&b, "   %d/%d sent, %d failed, %d blocked\n", r.SentCount, r.TargetCount, r.FailedCount, r.BlockedCount)
		fmt.Fprintf(&b, "   %s\n", string(preview))
	}
	return strings.TrimRight(b.String(), "\n")
}
