package entity

// MotionCommand команда управления дроном на один тик
type MotionCommand struct {
	LeftRight   int
	ForwardBack int
	UpDown      int
	Yaw         int
	Takeoff     bool // запрошен взлёт
	Land        bool // запрошена посадка дрона
}

// Clamp ограничивает все оси диапазоном [-speed, speed].
func (m MotionCommand) Clamp(speed int) MotionCommand {
	clamp := func(v int) int {
		if v > speed {
			return speed
		}
		if v < -speed {
			return -speed
		}
		return v
	}
	m.LeftRight = clamp(m.LeftRight)
	m.ForwardBack = clamp(m.ForwardBack)
	m.UpDown = clamp(m.UpDown)
	m.Yaw = clamp(m.Yaw)
	return m
}

// OperatorCommand команда оператора, считанная за тик
type OperatorCommand string

const (
	CommandNone OperatorCommand = ""     // Ничего не нажато
	CommandQuit OperatorCommand = "quit" // Завершить работу
	CommandLand OperatorCommand = "land" // Посадка и сверка серийных номеров
)

// ParseOperatorKey переводит символ клавиши в команду оператора.
func ParseOperatorKey(key rune) OperatorCommand {
	switch key {
	case 'q':
		return CommandQuit
	case 'l':
		return CommandLand
	default:
		return CommandNone
	}
}
