//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
	"solarsky/internal/infrastructure/keyboard"
)

var (
	defectColor = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	serialColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// Window окно OpenCV: показывает кадры и читает клавиатуру через waitKey.
type Window struct {
	win    *gocv.Window
	keymap *keyboard.Keymap
}

// OpenWindow создаёт окно с заголовком title.
func OpenWindow(title string, keymap *keyboard.Keymap) (*Window, error) {
	if keymap == nil {
		keymap = keyboard.NewKeymap(keyboard.DefaultSpeed)
	}
	return &Window{win: gocv.NewWindow(title), keymap: keymap}, nil
}

// DrawDetection рисует рамку дефекта и подпись "<класс> <уверенность>".
func (w *Window) DrawDetection(frame entity.Frame, d entity.Detection) {
	mat, err := matOf(frame)
	if err != nil {
		return
	}
	r := d.Box.Rect()
	gocv.Rectangle(&mat, r, defectColor, 2)
	gocv.PutText(&mat, d.Label(), labelOrigin(r), gocv.FontHersheySimplex, 1.0, defectColor, 2)
}

// DrawSerial обводит найденный серийный номер зелёным.
func (w *Window) DrawSerial(frame entity.Frame, span entity.TextSpan) {
	mat, err := matOf(frame)
	if err != nil {
		return
	}
	r := span.Box.Rect()
	gocv.Rectangle(&mat, r, serialColor, 2)
	gocv.PutText(&mat, span.Text, labelOrigin(r), gocv.FontHersheySimplex, 0.9, serialColor, 2)
}

func labelOrigin(r image.Rectangle) image.Point {
	return image.Pt(max(0, r.Min.X), max(35, r.Min.Y))
}

func (w *Window) Show(frame entity.Frame) error {
	mat, err := matOf(frame)
	if err != nil {
		return err
	}
	w.win.IMShow(mat)
	return nil
}

// Poll ждёт нажатие клавиши в окне не дольше wait.
func (w *Window) Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error) {
	if err := ctx.Err(); err != nil {
		return entity.CommandNone, nil
	}
	ms := int(wait.Milliseconds())
	if ms < 1 {
		ms = 1
	}
	key, ok := translateKey(w.win.WaitKey(ms))
	if !ok {
		return entity.CommandNone, nil
	}
	return w.keymap.Feed(key), nil
}

// CurrentCommand команда движения по клавишам, нажатым с прошлого тика.
func (w *Window) CurrentCommand() entity.MotionCommand {
	return w.keymap.CurrentCommand()
}

func (w *Window) Close() error {
	return w.win.Close()
}

var (
	_ port.Renderer      = (*Window)(nil)
	_ port.OperatorInput = (*Window)(nil)
	_ port.MotionSource  = (*Window)(nil)
)
