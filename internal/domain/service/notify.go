package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"

	"github.com/jooksuklubid/runclubs/internal/domain/entity"
	"github.com/jooksuklubid/runclubs/pkg/logger/types"
)

// NotifyService posts moderation notices and forwarded logs to a Telegram chat.
type NotifyService struct {
	bot     *tele.Bot
	chat    tele.ChatID
	baseURL string
	logger  *types.Logger
}

func NewNotifyService(bot *tele.Bot, chatID int64, baseURL string, logger *types.Logger) *NotifyService {
	return &NotifyService{
		bot:     bot,
		chat:    tele.ChatID(chatID),
		baseURL: baseURL,
		logger:  logger,
	}
}

// ClubRegistered tells moderators that a club waits for approval.
func (s *NotifyService) ClubRegistered(club entity.Club) error {
	_, err := s.bot.Send(s.chat, clubRegisteredText(club, s.baseURL), &tele.SendOptions{
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("send club notice: %w", err)
	}
	return nil
}

func clubRegisteredText(club entity.Club, baseURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New club waiting for approval: %s\n", club.Name)
	fmt.Fprintf(&b, "City: %s, %s\n", club.City, club.Area)
	fmt.Fprintf(&b, "Runs: %s\n", strings.Join(club.RunDays, ", "))
	fmt.Fprintf(&b, "Contact: %s\n", club.Email)
	fmt.Fprintf(&b, "Id: %s\n", club.ID)
	fmt.Fprintf(&b, "Page after approval: %s", club.Link(baseURL))
	return b.String()
}

// LogHook returns a log hook forwarding entries at or above level to the chat.
func (s *NotifyService) LogHook(level zapcore.Level) types.LogHook {
	return func(log types.Log) {
		if log.Level < level {
			return
		}
		text := fmt.Sprintf("[%s] %s\n%s\n%s", log.Level.CapitalString(), log.LoggerName, log.Caller, log.Message)
		if _, err := s.bot.Send(s.chat, text); err != nil && !strings.Contains(log.Message, "failed to send log to chat") {
			s.logger.Errorf("failed to send log to chat %d: %v", int64(s.chat), err)
		}
	}
}

// NopNotifier is used when no Telegram bot is configured.
type NopNotifier struct{}

func (NopNotifier) ClubRegistered(entity.Club) error {
	return nil
}
