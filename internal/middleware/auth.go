package middleware

import (
	"coursebot/internal/domain"
	"coursebot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const msgOwnerOnly = "❌ This command is only available to the bot owner."

// TrackUser registers the sender of every update and records their activity
func TrackUser(registry *service.RegistryService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender != nil && !sender.IsBot {
				created := registry.RegisterUser(domain.UserInfo{
					ID:        sender.ID,
					FirstName: sender.FirstName,
					LastName:  sender.LastName,
					Username:  sender.Username,
				})
				if created {
					logger.Debug("Tracked new user", zap.Int64("user_id", sender.ID))
				}
			}
			return next(c)
		}
	}
}

// OwnerOnly rejects updates from anyone but the configured owner
func OwnerOnly(auth *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !auth.IsOwner(sender.ID) {
				var userID int64
				if sender != nil {
					userID = sender.ID
				}
				logger.Warn("Owner command rejected",
					zap.Int64("user_id", userID),
					zap.String("text", c.Text()),
				)
				return c.Send(msgOwnerOnly)
			}
			return next(c)
		}
	}
}
