package port

import (
	"context"
	"time"

	"solarsky/internal/domain/entity"
)

// MotionSource отдаёт команду движения на текущий тик
type MotionSource interface {
	CurrentCommand() entity.MotionCommand
}

// OperatorInput опрашивает оператора с ограниченным ожиданием
type OperatorInput interface {
	// Poll ждёт команду не дольше wait, CommandNone если ничего не пришло
	Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error)
}

// FlightController транспорт команд дрона
type FlightController interface {
	SendRC(ctx context.Context, cmd entity.MotionCommand) error
	Takeoff(ctx context.Context) error
	Land(ctx context.Context) error
	StreamOn(ctx context.Context) error
	StreamOff(ctx context.Context) error
	Battery(ctx context.Context) (int, error)
}
