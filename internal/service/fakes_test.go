package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
)

var errStoreDown = errors.New("store unavailable")

type fakeChatRepo struct {
	mu      sync.Mutex
	chats   map[string]*entity.Chat
	nextId  int
	saves   int
	failOn  string // "create", "save", "find", "list", "delete"
	failAt  int    // fail the n-th save (1-based); 0 means every save when failOn == "save"
	purgeCh chan string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[string]*entity.Chat{}}
}

func (r *fakeChatRepo) assignIds(chat *entity.Chat) {
	for _, m := range chat.Messages {
		if m.Id == "" {
			r.nextId++
			m.Id = fmt.Sprintf("msg_%d", r.nextId)
		}
	}
}

func cloneChat(c *entity.Chat) *entity.Chat {
	out := *c
	out.Messages = make([]*entity.ChatMessage, len(c.Messages))
	for i, m := range c.Messages {
		mc := *m
		out.Messages[i] = &mc
	}
	return &out
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "create" {
		return errStoreDown
	}
	r.nextId++
	chat.Id = fmt.Sprintf("chat_%d", r.nextId)
	r.assignIds(chat)
	r.chats[chat.Id] = cloneChat(chat)
	return nil
}

func (r *fakeChatRepo) Save(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failOn == "save" && (r.failAt == 0 || r.failAt == r.saves) {
		return errStoreDown
	}
	if _, ok := r.chats[chat.Id]; !ok {
		return errors.New("not found")
	}
	r.assignIds(chat)
	r.chats[chat.Id] = cloneChat(chat)
	return nil
}

func (r *fakeChatRepo) FindOwned(ctx context.Context, id, userId string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "find" {
		return nil, errStoreDown
	}
	c, ok := r.chats[id]
	if !ok || c.UserId != userId {
		return nil, nil
	}
	return cloneChat(c), nil
}

func (r *fakeChatRepo) ListSummaries(ctx context.Context, userId string) ([]*entity.ChatSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "list" {
		return nil, errStoreDown
	}
	var out []*entity.ChatSummary
	for _, c := range r.chats {
		if c.UserId == userId {
			out = append(out, &entity.ChatSummary{Id: c.Id, Title: c.Title, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeChatRepo) DeleteOwned(ctx context.Context, id, userId string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "delete" {
		return 0, errStoreDown
	}
	c, ok := r.chats[id]
	if !ok || c.UserId != userId {
		return 0, nil
	}
	delete(r.chats, id)
	return 1, nil
}

func (r *fakeChatRepo) DeleteAllByUser(ctx context.Context, userId string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "delete" {
		return 0, errStoreDown
	}
	var n int64
	for id, c := range r.chats {
		if c.UserId == userId {
			delete(r.chats, id)
			n++
		}
	}
	if r.purgeCh != nil {
		r.purgeCh <- userId
	}
	return n, nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*entity.User
	failOn  string
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "create" {
		return errStoreDown
	}
	if _, ok := r.users[user.ClerkId]; ok {
		return errors.New("duplicate clerk id")
	}
	user.Id = "local_" + user.ClerkId
	u := *user
	r.users[user.ClerkId] = &u
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.failOn == "update" {
		return errStoreDown
	}
	u := *user
	r.users[user.ClerkId] = &u
	return nil
}

func (r *fakeUserRepo) FindByClerkId(ctx context.Context, clerkId string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "find" {
		return nil, errStoreDown
	}
	u, ok := r.users[clerkId]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) DeleteByClerkId(ctx context.Context, clerkId string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "delete" {
		return 0, errStoreDown
	}
	if _, ok := r.users[clerkId]; !ok {
		return 0, nil
	}
	delete(r.users, clerkId)
	return 1, nil
}

type fakeUow struct {
	chats *fakeChatRepo
	users *fakeUserRepo
}

func (u *fakeUow) ChatRepository() contract.ChatRepository { return u.chats }
func (u *fakeUow) UserRepository() contract.UserRepository { return u.users }

type fakeFactory struct {
	uow *fakeUow
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUow{chats: newFakeChatRepo(), users: newFakeUserRepo()}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeAssistant struct {
	title string
	reply string
}

func (a *fakeAssistant) GenerateTitle(ctx context.Context, message string) string { return a.title }
func (a *fakeAssistant) GenerateReply(ctx context.Context, message string) string { return a.reply }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeProvider struct {
	reply   string
	err     error
	prompts []string
}

var _ llm.LLMProvider = &fakeProvider{}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return p.Generate(ctx, "", options...)
	}
	return p.Generate(ctx, history[len(history)-1].Content, options...)
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.reply, p.err
}
