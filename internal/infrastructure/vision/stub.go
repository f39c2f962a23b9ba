//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"time"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
	"solarsky/internal/infrastructure/keyboard"
)

// Заглушки для сборки без OpenCV. Конструкторы всегда возвращают ErrNotEnabled.

const DefaultVideoURL = "udp://@0.0.0.0:11111"

// Enabled false: адаптеры OpenCV в этой сборке недоступны
const Enabled = false

type Capture struct{}

func OpenCapture(string) (*Capture, error) { return nil, ErrNotEnabled }

func (*Capture) NextFrame(context.Context) (entity.Frame, error) { return nil, ErrNotEnabled }

func (*Capture) Close() error { return nil }

type YOLODetector struct{}

func NewYOLODetector(DetectorConfig) (*YOLODetector, error) { return nil, ErrNotEnabled }

func (*YOLODetector) Score(context.Context, entity.Frame) ([]entity.Detection, error) {
	return nil, ErrNotEnabled
}

func (*YOLODetector) Close() error { return nil }

type TesseractRecognizer struct{}

func NewTesseractRecognizer(string) (*TesseractRecognizer, error) { return nil, ErrNotEnabled }

func (*TesseractRecognizer) Read(context.Context, entity.Frame) ([]entity.TextSpan, error) {
	return nil, ErrNotEnabled
}

func (*TesseractRecognizer) Close() error { return nil }

type Window struct{}

func OpenWindow(string, *keyboard.Keymap) (*Window, error) { return nil, ErrNotEnabled }

func (*Window) DrawDetection(entity.Frame, entity.Detection) {}

func (*Window) DrawSerial(entity.Frame, entity.TextSpan) {}

func (*Window) Show(entity.Frame) error { return ErrNotEnabled }

func (*Window) Poll(context.Context, time.Duration) (entity.OperatorCommand, error) {
	return entity.CommandNone, ErrNotEnabled
}

func (*Window) CurrentCommand() entity.MotionCommand { return entity.MotionCommand{} }

func (*Window) Close() error { return nil }

var (
	_ port.FrameSource    = (*Capture)(nil)
	_ port.DefectDetector = (*YOLODetector)(nil)
	_ port.TextRecognizer = (*TesseractRecognizer)(nil)
	_ port.Renderer       = (*Window)(nil)
	_ port.OperatorInput  = (*Window)(nil)
)
