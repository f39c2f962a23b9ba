package app

import (
	"errors"
	"fmt"
	"sync"

	"solarsky/internal/domain/port"
)

// ErrEmptySerial пустой номер не записывается: журнал на диске не хранит пустых строк.
var ErrEmptySerial = errors.New("serial number is empty")

// SerialLedger набор уже встреченных за сессию серийных номеров с журналом на диске.
type SerialLedger struct {
	log  port.SerialLog
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewSerialLedger создаёт журнал поверх log. Перед началом сессии нужно вызвать Reset.
func NewSerialLedger(log port.SerialLog) *SerialLedger {
	return &SerialLedger{
		log:  log,
		seen: make(map[string]struct{}),
	}
}

// Reset очищает набор и обрезает файл журнала.
func (l *SerialLedger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.log.Truncate(); err != nil {
		return fmt.Errorf("truncate serial log: %w", err)
	}
	l.seen = make(map[string]struct{})
	return nil
}

// Contains проверяет, записан ли номер в этой сессии.
func (l *SerialLedger) Contains(serial string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[serial]
	return ok
}

// Add записывает новый номер. Повторный номер пропускается без ошибки, added=false.
func (l *SerialLedger) Add(serial string) (added bool, err error) {
	if serial == "" {
		return false, ErrEmptySerial
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[serial]; ok {
		return false, nil
	}
	// Сначала журнал: в наборе не должно быть номера, которого нет на диске.
	if err := l.log.Append(serial); err != nil {
		return false, fmt.Errorf("append serial %q: %w", serial, err)
	}
	l.seen[serial] = struct{}{}
	return true, nil
}

// AllEntries читает журнал с диска в порядке записи.
func (l *SerialLedger) AllEntries() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries, err := l.log.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read serial log: %w", err)
	}
	return entries, nil
}

// Len возвращает число номеров в наборе.
func (l *SerialLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
