package vision

import "solarsky/internal/infrastructure/keyboard"

// Коды стрелок, которые возвращает cv::waitKey на разных бэкендах HighGUI
var arrowCodes = map[int]rune{
	// GTK / Qt
	0xff51: keyboard.KeyLeft,
	0xff52: keyboard.KeyUp,
	0xff53: keyboard.KeyRight,
	0xff54: keyboard.KeyDown,
	// Win32
	0x250000: keyboard.KeyLeft,
	0x260000: keyboard.KeyUp,
	0x270000: keyboard.KeyRight,
	0x280000: keyboard.KeyDown,
	// Cocoa
	63234: keyboard.KeyLeft,
	63232: keyboard.KeyUp,
	63235: keyboard.KeyRight,
	63233: keyboard.KeyDown,
}

// translateKey переводит код waitKey в клавишу раскладки. ok=false, если нажатия не было.
func translateKey(code int) (key rune, ok bool) {
	if code < 0 {
		return 0, false
	}
	if k, found := arrowCodes[code]; found {
		return k, true
	}
	// Модификаторы приходят в старших битах
	return rune(code & 0xff), true
}
