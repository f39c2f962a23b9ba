//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"solarsky/internal/domain/entity"
)

// MatFrame кадр, хранящий пиксели в gocv.Mat
type MatFrame struct {
	Mat gocv.Mat
	seq int64
}

func (f *MatFrame) Seq() int64 { return f.seq }

func (f *MatFrame) Close() error { return f.Mat.Close() }

// matOf достаёт Mat из кадра, созданного этим пакетом.
func matOf(frame entity.Frame) (gocv.Mat, error) {
	mf, ok := frame.(*MatFrame)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", frame)
	}
	if mf.Mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("frame %d is empty", mf.seq)
	}
	return mf.Mat, nil
}
