package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidMessage is returned when broadcast content fails validation
	ErrInvalidMessage = errors.New("invalid message content")
	// ErrRateLimited is returned when the admission check rejects a broadcast
	ErrRateLimited = errors.New("rate limit exceeded, please wait before sending another broadcast")
	// ErrRecipientBlocked marks a delivery failure caused by the user blocking the bot
	ErrRecipientBlocked = errors.New("recipient blocked the bot")
)

// TargetType selects the broadcast audience
type TargetType string

const (
	TargetAll         TargetType = "all"
	TargetSubscribers TargetType = "subscribers"
	TargetActive      TargetType = "active"
)

// Priority is informational metadata stored with a broadcast
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// BroadcastStatus is the lifecycle state of a broadcast
type BroadcastStatus string

const (
	StatusPending   BroadcastStatus = "pending"
	StatusSending   BroadcastStatus = "sending"
	StatusCompleted BroadcastStatus = "completed"
	// StatusInterrupted is assigned at startup to records a previous process left unfinished
	StatusInterrupted BroadcastStatus = "interrupted"
)

// MediaType is the kind of attachment sent with a broadcast
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

// Media is an attachment referenced by its Telegram file ID
type Media struct {
	Type    MediaType `json:"type"`
	FileID  string    `json:"file_id"`
	Caption string    `json:"caption,omitempty"`
}

// LinkButton is an inline URL button attached to broadcast messages
type LinkButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// BroadcastRecord tracks a single broadcast run
type BroadcastRecord struct {
	ID           int64           `json:"id"`
	Message      string          `json:"message"`
	Media        *Media          `json:"media,omitempty"`
	AdminID      int64           `json:"adminId"`
	TargetType   TargetType      `json:"targetType"`
	Priority     Priority        `json:"priority"`
	CreatedAt    time.Time       `json:"timestamp"`
	Status       BroadcastStatus `json:"status"`
	TargetCount  int             `json:"targetCount"`
	SentCount    int             `json:"sentCount"`
	FailedCount  int             `json:"failedCount"`
	BlockedCount int             `json:"blockedCount"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// SuccessRate returns the share of targets reached, in percent
func (r *BroadcastRecord) SuccessRate() float64 {
	if r.TargetCount == 0 {
		return 0
	}
	return float64(r.SentCount) / float64(r.TargetCount) * 100
}

// BroadcastOptions configures a broadcast
type BroadcastOptions struct {
	AdminID    int64
	TargetType TargetType
	Priority   Priority
	Media      *Media
	Buttons    []LinkButton
}

// BroadcastResult is the summary returned to the admin
type BroadcastResult struct {
	BroadcastID  int64
	TargetCount  int
	SentCount    int
	FailedCount  int
	BlockedCount int
}

// OutboundMessage is what the transport delivers to one recipient
type OutboundMessage struct {
	Text    string
	Media   *Media
	Buttons []LinkButton
}

// BroadcastStats aggregates registry, history and limiter state
type BroadcastStats struct {
	Registry         RegistryCounts
	HistoryCount     int
	RateLimit        RateLimitSnapshot
	TotalBroadcasts  int
	TotalSent        int
	TotalFailed      int
	AverageSuccess   float64
	TargetTypeCounts map[TargetType]int
}

// RateLimitSnapshot reports limiter usage
type RateLimitSnapshot struct {
	SentLastMinute int
	SentLastHour   int
	MaxPerMinute   int
	MaxPerHour     int
}
