package entity

// Frame кадр видеопотока. Буфер пикселей принадлежит источнику и живёт один тик.
type Frame interface {
	// Seq порядковый номер кадра у источника
	Seq() int64
	// Close освобождает буфер кадра
	Close() error
}
