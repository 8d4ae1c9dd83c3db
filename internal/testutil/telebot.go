package testutil

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// FakeContext is a tele.Context for handler tests.
// Methods not overridden here panic when called.
type FakeContext struct {
	tele.Context

	User     *tele.User
	Msg      *tele.Message
	CbQuery  *tele.Callback
	EditErr  error
	Sent     []interface{}
	Edited   []interface{}
	Markups  []*tele.ReplyMarkup
	Answered int
}

// NewFakeMessage creates a context for a private text message
func NewFakeMessage(userID int64, text string) *FakeContext {
	user := &tele.User{ID: userID, FirstName: "User"}
	return &FakeContext{
		User: user,
		Msg: &tele.Message{
			Sender: user,
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		},
	}
}

// NewFakeCallback creates a context for an inline button press
func NewFakeCallback(userID int64, data string) *FakeContext {
	c := NewFakeMessage(userID, "")
	c.CbQuery = &tele.Callback{ID: "cb-1", Sender: c.User, Message: c.Msg, Data: data}
	return c
}

func (c *FakeContext) Sender() *tele.User { return c.User }

func (c *FakeContext) Chat() *tele.Chat {
	if c.Msg == nil {
		return nil
	}
	return c.Msg.Chat
}

func (c *FakeContext) Message() *tele.Message { return c.Msg }

func (c *FakeContext) Callback() *tele.Callback { return c.CbQuery }

func (c *FakeContext) Text() string {
	if c.Msg == nil {
		return ""
	}
	return c.Msg.Text
}

func (c *FakeContext) Send(what interface{}, opts ...interface{}) error {
	c.Sent = append(c.Sent, what)
	c.Markups = append(c.Markups, markupOf(opts))
	return nil
}

func (c *FakeContext) Edit(what interface{}, opts ...interface{}) error {
	if c.EditErr != nil {
		return c.EditErr
	}
	c.Edited = append(c.Edited, what)
	c.Markups = append(c.Markups, markupOf(opts))
	return nil
}

func (c *FakeContext) Respond(_ ...*tele.CallbackResponse) error {
	c.Answered++
	return nil
}

// LastText returns the most recent text passed to Send
func (c *FakeContext) LastText() string {
	return lastString(c.Sent)
}

// LastEdit returns the most recent text passed to Edit
func (c *FakeContext) LastEdit() string {
	return lastString(c.Edited)
}

// LastMarkup returns the most recent reply markup
func (c *FakeContext) LastMarkup() *tele.ReplyMarkup {
	if len(c.Markups) == 0 {
		return nil
	}
	return c.Markups[len(c.Markups)-1]
}

func lastString(values []interface{}) string {
	for i := len(values) - 1; i >= 0; i-- {
		if s, ok := values[i].(string); ok {
			return s
		}
	}
	return ""
}

func markupOf(opts []interface{}) *tele.ReplyMarkup {
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			return m
		}
	}
	return nil
}

// SentMessage is one call to FakeMessenger.Send
type SentMessage struct {
	To   string
	What interface{}
	Opts []interface{}
}

// FakeMessenger records outgoing messages. Errors are keyed by recipient.
type FakeMessenger struct {
	mu     sync.Mutex
	Errors map[string]error
	Sent   []SentMessage
}

func (m *FakeMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Errors[to.Recipient()]; err != nil {
		return nil, err
	}
	m.Sent = append(m.Sent, SentMessage{To: to.Recipient(), What: what, Opts: opts})
	return &tele.Message{}, nil
}
