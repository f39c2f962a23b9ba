package vision

import "errors"

// ErrNotEnabled возвращается адаптерами, если сборка без тега gocv
var ErrNotEnabled = errors.New("gocv build tag is not enabled")

// DetectorConfig параметры ONNX-модели дефектов (экспорт YOLOv8)
type DetectorConfig struct {
	ModelPath      string
	InputSize      int     // сторона квадратного входа модели
	ScoreThreshold float32 // минимальная уверенность детекции
	NMSThreshold   float32 // порог IoU для подавления пересечений
}

// DefaultDetectorConfig значения по умолчанию
func DefaultDetectorConfig(modelPath string) DetectorConfig {
	return DetectorConfig{
		ModelPath:      modelPath,
		InputSize:      640,
		ScoreThreshold: 0.25,
		NMSThreshold:   0.7,
	}
}
