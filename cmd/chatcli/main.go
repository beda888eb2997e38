package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ai-chat-be/pkg/chatclient"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

const usage = `Commands:
  /new            start a new conversation
  /list           list conversations
  /open <id>      open a conversation
  /delete <id>    delete a conversation
  /quit           exit
Anything else is sent as a message.`

type session struct {
	client *chatclient.Client
	store  *chatclient.Store
	tw     *chatclient.Typewriter
	active string
}

func main() {
	_ = godotenv.Load()

	baseURL := getEnv("CHAT_API_URL", "http://localhost:3000/api")
	token := os.Getenv("CHAT_API_TOKEN")
	userId := os.Getenv("CHAT_USER_ID")
	if userId == "" {
		color.Red("CHAT_USER_ID is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &session{
		client: chatclient.NewClient(baseURL, token, userId),
		store:  chatclient.NewStore(),
		tw:     chatclient.NewTypewriter(os.Stdout),
	}

	color.Cyan("Chat client connected to %s as %s", baseURL, userId)
	fmt.Println(usage)
	if err := s.refresh(ctx); err != nil {
		color.Red("Failed to load conversations: %v", err)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		s.prompt()
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := s.handle(ctx, strings.TrimSpace(line)); quit {
				return
			}
		}
	}
}

func (s *session) prompt() {
	title := "new"
	if chat, ok := s.store.Chat(s.active); ok {
		title = chat.Title
	}
	color.New(color.FgHiBlack).Printf("[%s] ", title)
	fmt.Print("> ")
}

func (s *session) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(usage)
	case "/new":
		s.active = ""
		color.Yellow("Started a new conversation")
	case "/list":
		if err := s.refresh(ctx); err != nil {
			color.Red("Failed: %v", err)
			return false
		}
		s.printList()
	case "/open":
		s.open(ctx, arg)
	case "/delete":
		s.delete(ctx, arg)
	default:
		s.send(ctx, line)
	}
	return false
}

func (s *session) refresh(ctx context.Context) error {
	summaries, err := s.client.ListChats(ctx)
	if err != nil {
		return err
	}
	s.store.Load(summaries)
	return nil
}

func (s *session) printList() {
	chats := s.store.Chats()
	if len(chats) == 0 {
		color.Yellow("No conversations yet")
		return
	}
	for _, c := range chats {
		marker := " "
		if c.Id == s.active {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s\n", marker, color.CyanString(c.Id), c.Title, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (s *session) open(ctx context.Context, id string) {
	if id == "" {
		color.Red("Usage: /open <id>")
		return
	}
	chat, err := s.client.GetChat(ctx, id)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}
	s.store.Put(*chat)
	s.active = chat.Id

	color.Cyan("== %s ==", chat.Title)
	for _, m := range chat.Messages {
		printMessage(m)
	}
}

func (s *session) delete(ctx context.Context, id string) {
	if id == "" {
		color.Red("Usage: /delete <id>")
		return
	}
	pending, err := s.store.BeginDelete(id)
	if err != nil {
		color.Red("Unknown conversation %s, run /list first", id)
		return
	}
	if err := s.client.DeleteChat(ctx, id); err != nil {
		pending.Rollback()
		color.Red("Failed: %v", err)
		return
	}
	pending.Commit(nil)
	if s.active == id {
		s.active = ""
	}
	color.Green("Conversation deleted")
}

func (s *session) send(ctx context.Context, content string) {
	pending, err := s.store.BeginSend(s.active, content)
	if err != nil {
		color.Red("Failed: %v", err)
		return
	}

	res, err := s.client.Send(ctx, chatclient.SendInput{ChatId: s.active, Message: content})
	if err != nil {
		pending.Rollback()
		color.Red("Failed: %v", err)
		return
	}
	pending.Commit(res)
	s.active = pending.ChatId()

	chat, ok := s.store.Chat(s.active)
	if !ok {
		return
	}
	for _, m := range chat.Messages {
		if !m.Streaming {
			continue
		}
		color.New(color.FgGreen).Print("assistant: ")
		_ = s.tw.Reveal(ctx, m.Content)
		fmt.Println()
		s.store.FinishStreaming(chat.Id, m.Id)
	}
}

func printMessage(m chatclient.Message) {
	if m.Role == chatclient.RoleUser {
		color.New(color.FgBlue).Print("you: ")
	} else {
		color.New(color.FgGreen).Print("assistant: ")
	}
	fmt.Println(m.Content)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
