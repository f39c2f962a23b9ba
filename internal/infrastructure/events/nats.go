package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// DefaultSubjectPrefix префикс тем событий
const DefaultSubjectPrefix = "solarsky"

// NATSPublisher публикует события сессии в NATS: тема <prefix>.<тип события>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher подключается к серверу NATS.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("solarsky"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS publisher initialized", "url", url, "prefix", prefix)
	return newNATSPublisher(conn, prefix, logger), nil
}

func newNATSPublisher(conn *nats.Conn, prefix string, logger *slog.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Subject тема для типа события.
func (p *NATSPublisher) Subject(t entity.EventType) string {
	return p.prefix + "." + string(t)
}

// Publish публикует событие без ожидания подтверждения.
func (p *NATSPublisher) Publish(ctx context.Context, event entity.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.logger.Debug("published event", "subject", subject, "run_id", event.RunID)
	return nil
}

// Close отправляет накопленные сообщения и закрывает соединение.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

var _ port.EventPublisher = (*NATSPublisher)(nil)
