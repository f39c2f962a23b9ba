package port

import (
	"context"

	"solarsky/internal/domain/entity"
)

// DefectDetector интерфейс классификатора дефектов панелей
type DefectDetector interface {
	// Score возвращает найденные области в порядке, заданном самим детектором
	Score(ctx context.Context, frame entity.Frame) ([]entity.Detection, error)
}

// TextRecognizer интерфейс распознавателя текста
type TextRecognizer interface {
	// Read распознаёт текст на всём кадре
	Read(ctx context.Context, frame entity.Frame) ([]entity.TextSpan, error)
}
