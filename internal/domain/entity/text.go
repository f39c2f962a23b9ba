package entity

// SerialConfidenceThreshold минимальная уверенность OCR для серийного номера (включительно).
const SerialConfidenceThreshold = 0.90

// TextSpan фрагмент текста, найденный распознавателем
type TextSpan struct {
	Text       string
	Confidence float64 // 0..1
	Box        BoundingBox
}

// QualifiesAsSerial проверяет, достаточно ли уверенности, чтобы считать текст серийным номером.
func (s TextSpan) QualifiesAsSerial() bool {
	return s.Text != "" && s.Confidence >= SerialConfidenceThreshold
}
