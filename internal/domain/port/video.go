package port

import (
	"context"

	"solarsky/internal/domain/entity"
)

// FrameSource источник кадров с дрона
type FrameSource interface {
	// NextFrame блокируется до получения следующего кадра
	NextFrame(ctx context.Context) (entity.Frame, error)
	Close() error
}

// Renderer рисует разметку на кадре и выводит его оператору
type Renderer interface {
	DrawDetection(frame entity.Frame, d entity.Detection)
	DrawSerial(frame entity.Frame, span entity.TextSpan)
	Show(frame entity.Frame) error
	Close() error
}
