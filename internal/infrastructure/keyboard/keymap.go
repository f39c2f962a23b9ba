package keyboard

import (
	"sync"

	"solarsky/internal/domain/entity"
)

// Коды стрелок. Окно OpenCV и терминал приводятся к одним и тем же значениям.
const (
	KeyLeft  rune = 0x110000 + iota // вне диапазона Unicode
	KeyUp
	KeyRight
	KeyDown
)

// DefaultSpeed скорость по каждой оси
const DefaultSpeed = 50

// Keymap переводит клавиши в команды движения и команды оператора.
// Команда движения действует один тик: после чтения она сбрасывается.
type Keymap struct {
	speed int

	mu      sync.Mutex
	pending entity.MotionCommand
}

// NewKeymap создаёт раскладку с заданной скоростью
func NewKeymap(speed int) *Keymap {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Keymap{speed: speed}
}

// Feed обрабатывает нажатие. Клавиши движения запоминаются до следующего тика,
// для q и l возвращается команда оператора.
func (k *Keymap) Feed(key rune) entity.OperatorCommand {
	if cmd := entity.ParseOperatorKey(key); cmd != entity.CommandNone {
		return cmd
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	switch key {
	case KeyLeft:
		k.pending.LeftRight = -k.speed
	case KeyRight:
		k.pending.LeftRight = k.speed
	case KeyUp:
		k.pending.ForwardBack = k.speed
	case KeyDown:
		k.pending.ForwardBack = -k.speed
	case 'w':
		k.pending.UpDown = k.speed
	case 's':
		k.pending.UpDown = -k.speed
	case 'a':
		k.pending.Yaw = k.speed
	case 'd':
		k.pending.Yaw = -k.speed
	case 'e':
		k.pending.Takeoff = true
	case 'z':
		k.pending.Land = true
	}
	return entity.CommandNone
}

// CurrentCommand возвращает накопленную команду и сбрасывает её.
func (k *Keymap) CurrentCommand() entity.MotionCommand {
	k.mu.Lock()
	defer k.mu.Unlock()

	cmd := k.pending.Clamp(k.speed)
	k.pending = entity.MotionCommand{}
	return cmd
}
