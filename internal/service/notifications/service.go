package notifications

import (
	"context"
	"sync"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/platform/telegram"
)

type message struct {
	chatID int64
	text   string
}

// Service routes fire-and-forget messages to Telegram chats. Codes are
// minted at login, bound to a chat via /start, and die with the process.
type Service struct {
	client *telegram.Client

	mu         sync.RWMutex
	codeToChat map[string]int64
	chatToCode map[int64]string
	codeToUser map[string]string

	outbound chan message
}

func NewService(client *telegram.Client, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Service{
		client:     client,
		codeToChat: make(map[string]int64),
		chatToCode: make(map[int64]string),
		codeToUser: make(map[string]string),
		outbound:   make(chan message, queueSize),
	}
}

// Start drains the outbound queue until ctx is cancelled. Run it once,
// in its own goroutine.
func (s *Service) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.outbound:
			if err := s.client.SendMessage(ctx, msg.chatID, msg.text); err != nil {
				logger.Warn().Err(err).Int64("chat_id", msg.chatID).Msg("Failed to deliver notification")
			}
		}
	}
}

// RegisterCode records the owner of a freshly minted link code.
func (s *Service) RegisterCode(linkCode, userID string) {
	if linkCode == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codeToUser[linkCode] = userID
}

// Bind attaches a chat to a link code. The code must have been minted by a
// login first. Rebinding a code to a new chat replaces the old binding.
func (s *Service) Bind(linkCode string, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codeToUser[linkCode]; !ok {
		return errors.New(errors.ErrCodeNotFound, "Unknown link code")
	}

	if old, ok := s.chatToCode[chatID]; ok {
		delete(s.codeToChat, old)
	}
	s.codeToChat[linkCode] = chatID
	s.chatToCode[chatID] = linkCode

	logger.Info().Str("link_code", linkCode).Int64("chat_id", chatID).Msg("Chat bound to link code")
	return nil
}

// UserByChat resolves the user behind a bound chat, for inbound commands.
func (s *Service) UserByChat(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.chatToCode[chatID]
	if !ok {
		return "", false
	}
	userID, ok := s.codeToUser[code]
	return userID, ok
}

// Notify enqueues a message for the chat bound to linkCode. Unbound codes
// and a full queue both drop the message; delivery is never guaranteed and
// never blocks the caller.
func (s *Service) Notify(linkCode, text string) {
	if linkCode == "" {
		return
	}

	s.mu.RLock()
	chatID, ok := s.codeToChat[linkCode]
	s.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case s.outbound <- message{chatID: chatID, text: text}:
	default:
		logger.Warn().Str("link_code", linkCode).Msg("Notification queue full, dropping message")
	}
}

// Pending reports the number of queued, undelivered messages.
func (s *Service) Pending() int {
	return len(s.outbound)
}

// NotifyChat enqueues a message for a chat directly, bypassing code lookup.
func (s *Service) NotifyChat(chatID int64, text string) {
	select {
	case s.outbound <- message{chatID: chatID, text: text}:
	default:
		logger.Warn().Int64("chat_id", chatID).Msg("Notification queue full, dropping message")
	}
}
