package vision

import (
	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// Headless рендерер без окна: разметка не рисуется, кадры не показываются.
type Headless struct{}

func (Headless) DrawDetection(entity.Frame, entity.Detection) {}

func (Headless) DrawSerial(entity.Frame, entity.TextSpan) {}

func (Headless) Show(entity.Frame) error { return nil }

func (Headless) Close() error { return nil }

var _ port.Renderer = Headless{}
