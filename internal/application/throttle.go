package app

// DefaultFrameSkip обрабатывается каждый пятый кадр
const DefaultFrameSkip = 5

// Throttle прореживает кадры: на детекцию уходит только каждый k-й тик.
type Throttle struct {
	skip int
	n    int
}

// NewThrottle создаёт прореживатель с периодом skip (значения < 1 означают "каждый кадр").
func NewThrottle(skip int) *Throttle {
	if skip < 1 {
		skip = 1
	}
	return &Throttle{skip: skip}
}

// Next отмечает очередной тик и сообщает, нужно ли обрабатывать кадр.
// Тики считаются с единицы: при skip=5 обрабатываются 5, 10, 15...
func (t *Throttle) Next() bool {
	t.n++
	return t.n%t.skip == 0
}

// Ticks возвращает число прошедших тиков.
func (t *Throttle) Ticks() int {
	return t.n
}
