package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"coursebot/internal/domain"
)

var (
	injectionPatterns = compileAll(
		`(?i)<script`,
		`(?i)javascript:`,
		`(?i)data:text/html`,
		`(?i)vbscript:`,
		`(?i)on\w+\s*=`,
		`(?i)eval\(`,
		`(?i)document\.`,
		`(?i)window\.`,
		`(?i)alert\(`,
		`(?i)confirm\(`,
		`(?i)prompt\(`,
	)

	spamPatterns = compileAll(
		`(?i)buy.*now`,
		`(?i)click.*here`,
		`(?i)free.*money`,
		`(?i)earn.*fast`,
		`(?i)make.*money`,
		`(?i)work.*from.*home`,
		`(?i)bit\.ly`,
		`(?i)tinyurl`,
		`(?i)goo\.gl`,
	)

	sanitizePatterns = compileAll(
		`[<>]`,
		`(?i)javascript:`,
		`(?i)vbscript:`,
		`(?i)data:`,
		`(?i)on\w+=`,
	)

	externalLinkPattern = regexp.MustCompile(`(?i)https?://`)
	tokenPattern        = regexp.MustCompile(`\d{8,}:[A-Za-z0-9_-]{35}`)
	exactTokenPattern   = regexp.MustCompile(`^\d{8,}:[A-Za-z0-9_-]{35}$`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// DefaultMaxLength bounds accepted user text
const DefaultMaxLength = 4000

// Validator is the input gate for user-originated text
type Validator struct {
	maxLength int
}

// NewValidator creates a validator. maxLength <= 0 uses DefaultMaxLength.
func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{maxLength: maxLength}
}

// Validate checks text and returns its sanitized form.
// Rejections wrap domain.ErrInvalidMessage with the reason.
func (v *Validator) Validate(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", reject("message is empty")
	}
	if len([]rune(text)) > v.maxLength {
		return "", reject(fmt.Sprintf("message is longer than %d characters", v.maxLength))
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return "", reject("message contains control characters")
		}
	}
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return "", reject("message contains unsafe content")
		}
	}
	for _, p := range spamPatterns {
		if p.MatchString(text) {
			return "", reject("message looks like spam")
		}
	}

	return Sanitize(text), nil
}

func reject(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidMessage, reason)
}

// Sanitize strips markup and script schemes from text
func Sanitize(text string) string {
	for _, p := range sanitizePatterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// MonitorResponse reports whether outbound text is safe to send
func MonitorResponse(text string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return false
		}
	}
	return !tokenPattern.MatchString(text)
}

// HasExternalLinks reports whether text contains http(s) links
func HasExternalLinks(text string) bool {
	return externalLinkPattern.MatchString(text)
}

// SanitizeForLogging redacts bot tokens
func SanitizeForLogging(text string) string {
	return tokenPattern.ReplaceAllString(text, "[REDACTED_TOKEN]")
}

// IsValidTokenFormat checks the shape of a Telegram bot token
func IsValidTokenFormat(token string) bool {
	return exactTokenPattern.MatchString(token)
}
