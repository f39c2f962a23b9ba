package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"solarsky/internal/domain/entity"
)

type stubSessions struct{ state entity.SessionState }

func (s stubSessions) State() entity.SessionState { return s.state }

type stubLedger struct{ n int }

func (s stubLedger) Len() int { return s.n }

const operatorChat = 42

func newTestBot() *Bot {
	return newBot(nil, operatorChat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestBot_LandCommandReachesPoll(t *testing.T) {
	b := newTestBot()

	require.Equal(t, msgLandQueued, b.handleCommand("land"))

	cmd, err := b.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, entity.CommandLand, cmd)
}

func TestBot_SecondCommandIsRejectedUntilPolled(t *testing.T) {
	b := newTestBot()

	require.Equal(t, msgQuitQueued, b.handleCommand("quit"))
	require.Equal(t, msgBusy, b.handleCommand("land"))

	cmd, err := b.Poll(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, entity.CommandQuit, cmd)
	require.Equal(t, msgLandQueued, b.handleCommand("land"))
}

func TestBot_PollTimesOut(t *testing.T) {
	b := newTestBot()

	start := time.Now()
	cmd, err := b.Poll(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, entity.CommandNone, cmd)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestBot_Status(t *testing.T) {
	b := newTestBot()
	require.Contains(t, b.handleCommand("status"), "idle")

	b.Watch(stubSessions{state: entity.StateInspecting}, stubLedger{n: 3})
	status := b.handleCommand("status")
	require.Contains(t, status, "inspecting")
	require.Contains(t, status, "3")
}

func TestBot_HelpAndUnknown(t *testing.T) {
	b := newTestBot()
	require.Equal(t, msgHelp, b.handleCommand("help"))
	require.Equal(t, msgHelp, b.handleCommand("start"))
	require.Equal(t, msgUnknownCommand, b.handleCommand("fly"))
}

func TestBot_ForeignChatCannotControl(t *testing.T) {
	b := newTestBot()

	require.Equal(t, msgForbidden, b.handleMessage(commandMessage(7, "/quit")))
	require.Equal(t, msgForbidden, b.handleMessage(commandMessage(7, "/land")))
	require.Equal(t, msgForbidden, b.handleMessage(&tgbotapi.Message{Text: "/land"}))

	cmd, err := b.Poll(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, entity.CommandNone, cmd)

	require.Equal(t, msgLandQueued, b.handleMessage(commandMessage(operatorChat, "/land")))
	cmd, err = b.Poll(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, entity.CommandLand, cmd)
}

func TestNewBot_RequiresChat(t *testing.T) {
	_, err := NewBot("token", 0, nil)
	require.ErrorIs(t, err, ErrNoChat)
}
