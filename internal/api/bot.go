package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

const (
	msgHelp = `ℹ️ Управление инспекцией SolarSky:

/land — посадить сессию и сверить найденные номера с фермой
/quit — завершить полёт и остановить программу
/status — состояние сессии и число найденных номеров
/help — справка`

	msgLandQueued     = "🛬 Команда принята: выполняю сверку инспекции."
	msgQuitQueued     = "🛑 Команда принята: завершаю работу."
	msgBusy           = "⏳ Предыдущая команда ещё не обработана, попробуйте позже."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgForbidden      = "⛔ Этот чат не может управлять инспекцией."
	msgStatus         = "📊 Сессия: %s\n🔢 Найдено номеров: %d"
)

// SessionView состояние сессии для /status
type SessionView interface {
	State() entity.SessionState
}

// LedgerView размер журнала номеров для /status
type LedgerView interface {
	Len() int
}

// Bot канал оператора в Telegram: принимает команды и присылает уведомления.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64

	sessions SessionView
	ledger   LedgerView

	commands chan entity.OperatorCommand
	logger   *slog.Logger
}

// ErrNoChat боту не задан чат оператора
var ErrNoChat = errors.New("telegram chat id is required")

// NewBot создаёт нового бота. Управлять инспекцией и получать уведомления может только чат chatID.
func NewBot(token string, chatID int64, logger *slog.Logger) (*Bot, error) {
	if chatID == 0 {
		return nil, ErrNoChat
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("authorized on telegram account", "username", api.Self.UserName)

	return newBot(api, chatID, logger), nil
}

func newBot(api *tgbotapi.BotAPI, chatID int64, logger *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		chatID:   chatID,
		commands: make(chan entity.OperatorCommand, 1),
		logger:   logger,
	}
}

// Watch подключает источники данных для /status.
func (b *Bot) Watch(sessions SessionView, ledger LedgerView) {
	b.sessions = sessions
	b.ledger = ledger
}

// Run обрабатывает входящие сообщения до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			if update.Message == nil || update.Message.Chat == nil || !update.Message.IsCommand() {
				continue
			}
			b.sendMessage(update.Message.Chat.ID, b.handleMessage(update.Message))
		}
	}
}

// handleMessage проверяет чат отправителя и возвращает ответ.
func (b *Bot) handleMessage(msg *tgbotapi.Message) string {
	if msg.Chat == nil || msg.Chat.ID != b.chatID {
		b.logger.Warn("command from foreign chat ignored", "command", msg.Command())
		return msgForbidden
	}
	return b.handleCommand(msg.Command())
}

// handleCommand выполняет команду и возвращает ответ оператору.
func (b *Bot) handleCommand(command string) string {
	switch command {
	case "start", "help":
		return msgHelp
	case "land":
		if !b.enqueue(entity.CommandLand) {
			return msgBusy
		}
		return msgLandQueued
	case "quit":
		if !b.enqueue(entity.CommandQuit) {
			return msgBusy
		}
		return msgQuitQueued
	case "status":
		return b.status()
	default:
		return msgUnknownCommand
	}
}

func (b *Bot) enqueue(cmd entity.OperatorCommand) bool {
	select {
	case b.commands <- cmd:
		b.logger.Info("operator command queued", "command", cmd)
		return true
	default:
		return false
	}
}

func (b *Bot) status() string {
	state := entity.StateIdle
	if b.sessions != nil {
		state = b.sessions.State()
	}
	serials := 0
	if b.ledger != nil {
		serials = b.ledger.Len()
	}
	return fmt.Sprintf(msgStatus, state, serials)
}

// Poll отдаёт команду, пришедшую из чата, ожидая не дольше wait.
func (b *Bot) Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error) {
	if wait <= 0 {
		select {
		case cmd := <-b.commands:
			return cmd, nil
		default:
			return entity.CommandNone, nil
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case cmd := <-b.commands:
		return cmd, nil
	case <-timer.C:
		return entity.CommandNone, nil
	case <-ctx.Done():
		return entity.CommandNone, nil
	}
}

// Notify отправляет сообщение в чат оператора.
func (b *Bot) Notify(ctx context.Context, text string) error {
	_ = ctx
	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message failed", "chat", chatID, "error", err)
	}
}

var (
	_ port.Notifier      = (*Bot)(nil)
	_ port.OperatorInput = (*Bot)(nil)
)
