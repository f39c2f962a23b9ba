package port

import (
	"context"

	"solarsky/internal/domain/entity"
)

// EventPublisher публикует события сессии
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// Notifier отправляет текстовые сообщения оператору
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
