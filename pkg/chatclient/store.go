package chatclient

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	tempPrefix       = "temp-"
	placeholderTitle = "New conversation"
)

var ErrUnknownChat = errors.New("chat not in store")

// Store is the client-side list of chats, newest first, with optimistic
// updates that can be reconciled against the server or rolled back.
type Store struct {
	mu     sync.Mutex
	chats  []Chat
	now    func() time.Time
	tempId func() string
}

func NewStore() *Store {
	return &Store{
		now:    time.Now,
		tempId: func() string { return tempPrefix + uuid.NewString() },
	}
}

// Load replaces the store content with server summaries. Messages of chats
// already held are kept.
func (s *Store) Load(summaries []ChatSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string][]Message, len(s.chats))
	for _, c := range s.chats {
		known[c.Id] = c.Messages
	}

	chats := make([]Chat, 0, len(summaries))
	for _, sum := range summaries {
		chats = append(chats, Chat{
			Id:        sum.Id,
			Title:     sum.Title,
			Messages:  known[sum.Id],
			CreatedAt: sum.CreatedAt,
			UpdatedAt: sum.UpdatedAt,
		})
	}
	s.chats = chats
}

// Put inserts or replaces a full chat.
func (s *Store) Put(chat Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(chat.Id); i >= 0 {
		s.chats[i] = cloneChat(chat)
		return
	}
	s.chats = append([]Chat{cloneChat(chat)}, s.chats...)
}

func (s *Store) Chats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChats(s.chats)
}

func (s *Store) Chat(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneChat(s.chats[i]), true
	}
	return Chat{}, false
}

// FinishStreaming marks a message as fully revealed.
func (s *Store) FinishStreaming(chatId, messageId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(chatId)
	if i < 0 {
		return
	}
	for j := range s.chats[i].Messages {
		if s.chats[i].Messages[j].Id == messageId {
			s.chats[i].Messages[j].Streaming = false
		}
	}
}

// Pending is an optimistic change awaiting the server. Exactly one of Commit
// or Rollback takes effect; later calls are no-ops.
type Pending struct {
	store   *Store
	chatId  string
	tempMsg string
	newChat bool
	done    bool

	deleting bool
	removed  Chat

	// where the chat sat before the change, and its UpdatedAt
	prevIndex   int
	prevAfter   string
	prevUpdated time.Time
}

// ChatId is the id the change was applied to, a temporary one for a new chat.
func (p *Pending) ChatId() string {
	return p.chatId
}

// BeginSend shows the user's message right away. An empty chatId opens a
// temporary chat at the top of the list.
func (s *Store) BeginSend(chatId, content string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Pending{store: s}
	now := s.now()
	msg := Message{
		Id:        s.tempId(),
		Content:   content,
		Role:      RoleUser,
		Timestamp: now,
		Temporary: true,
	}
	p.tempMsg = msg.Id

	if chatId == "" {
		chat := Chat{
			Id:        s.tempId(),
			Title:     placeholderTitle,
			Messages:  []Message{msg},
			CreatedAt: now,
			UpdatedAt: now,
			Temporary: true,
		}
		s.chats = append([]Chat{chat}, s.chats...)
		p.chatId = chat.Id
		p.newChat = true
		return p, nil
	}

	i := s.indexOf(chatId)
	if i < 0 {
		return nil, ErrUnknownChat
	}
	chat := s.chats[i]
	p.prevIndex, p.prevAfter, p.prevUpdated = i, s.idBefore(i), chat.UpdatedAt
	chat.Messages = append(append([]Message(nil), chat.Messages...), msg)
	chat.UpdatedAt = now
	s.moveToFront(i, chat)
	p.chatId = chatId
	return p, nil
}

// BeginDelete hides a chat until the server confirms.
func (s *Store) BeginDelete(chatId string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(chatId)
	if i < 0 {
		return nil, ErrUnknownChat
	}
	p := &Pending{store: s, chatId: chatId, deleting: true, removed: cloneChat(s.chats[i]), prevIndex: i, prevAfter: s.idBefore(i)}
	s.removeAt(i)
	return p, nil
}

// Commit reconciles the optimistic change with the server's answer. The new
// assistant message is left Streaming until FinishStreaming. res is ignored for
// deletes.
func (p *Pending) Commit(res *SendResult) {
	s := p.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.done {
		return
	}
	p.done = true

	if p.deleting || res == nil {
		return
	}

	i := s.indexOf(p.chatId)
	if res.Chat != nil {
		chat := cloneChat(*res.Chat)
		chat.Temporary = false
		markLastAssistantStreaming(chat.Messages)
		if i < 0 {
			s.chats = append([]Chat{chat}, s.chats...)
		} else {
			s.moveToFront(i, chat)
		}
		p.chatId = chat.Id
		return
	}

	if i < 0 || res.Message == nil {
		return
	}
	chat := s.chats[i]
	msgs := append([]Message(nil), chat.Messages...)
	for j := range msgs {
		if msgs[j].Id == p.tempMsg {
			msgs[j].Temporary = false
		}
	}
	reply := *res.Message
	reply.Streaming = true
	chat.Messages = append(msgs, reply)
	if !reply.Timestamp.IsZero() {
		chat.UpdatedAt = reply.Timestamp
	}
	s.moveToFront(i, chat)
}

// Rollback undoes only this change. Changes settled by other Pendings since
// it began are kept.
func (p *Pending) Rollback() {
	s := p.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.done {
		return
	}
	p.done = true

	i := s.indexOf(p.chatId)
	switch {
	case p.deleting:
		if i < 0 {
			s.insertAt(p.restoreIndex(), p.removed)
		}
	case p.newChat:
		if i >= 0 {
			s.removeAt(i)
		}
	case i >= 0:
		chat := s.chats[i]
		var msgs []Message
		for _, m := range chat.Messages {
			if m.Id != p.tempMsg {
				msgs = append(msgs, m)
			}
		}
		chat.Messages = msgs
		chat.UpdatedAt = p.prevUpdated
		s.removeAt(i)
		s.insertAt(p.restoreIndex(), chat)
	}
}

// restoreIndex puts the chat back after its old neighbour when that one is
// still listed, else at its old index.
func (p *Pending) restoreIndex() int {
	if p.prevAfter == "" {
		return 0
	}
	if j := p.store.indexOf(p.prevAfter); j >= 0 {
		return j + 1
	}
	return p.prevIndex
}

func (s *Store) indexOf(id string) int {
	for i := range s.chats {
		if s.chats[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *Store) idBefore(i int) string {
	if i == 0 {
		return ""
	}
	return s.chats[i-1].Id
}

func (s *Store) removeAt(i int) {
	s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
	if len(s.chats) == 0 {
		s.chats = nil
	}
}

// insertAt clamps i to the current length.
func (s *Store) insertAt(i int, chat Chat) {
	if i > len(s.chats) {
		i = len(s.chats)
	}
	out := make([]Chat, 0, len(s.chats)+1)
	out = append(out, s.chats[:i]...)
	out = append(out, chat)
	out = append(out, s.chats[i:]...)
	s.chats = out
}

func (s *Store) moveToFront(i int, chat Chat) {
	rest := make([]Chat, 0, len(s.chats))
	rest = append(rest, chat)
	rest = append(rest, s.chats[:i]...)
	rest = append(rest, s.chats[i+1:]...)
	s.chats = rest
}

func markLastAssistantStreaming(msgs []Message) {
	for j := len(msgs) - 1; j >= 0; j-- {
		if msgs[j].Role == RoleAssistant {
			msgs[j].Streaming = true
			return
		}
	}
}

func cloneChat(c Chat) Chat {
	if c.Messages != nil {
		c.Messages = append([]Message(nil), c.Messages...)
	}
	return c
}

func cloneChats(in []Chat) []Chat {
	if in == nil {
		return nil
	}
	out := make([]Chat, len(in))
	for i, c := range in {
		out[i] = cloneChat(c)
	}
	return out
}
