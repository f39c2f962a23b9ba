//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// DefaultVideoURL поток Tello после команды streamon
const DefaultVideoURL = "udp://@0.0.0.0:11111"

// Enabled true: сборка с тегом gocv
const Enabled = true

// Capture источник кадров из видеопотока
type Capture struct {
	vc  *gocv.VideoCapture
	seq int64
}

// OpenCapture открывает видеопоток по адресу или пути к файлу.
func OpenCapture(url string) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(url)
	if err != nil {
		return nil, fmt.Errorf("open video capture: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.New("video capture is not opened")
	}
	// Держим в буфере только последний кадр
	vc.Set(gocv.VideoCaptureBufferSize, 1)
	return &Capture{vc: vc}, nil
}

// NextFrame блокируется до первого непустого кадра.
func (c *Capture) NextFrame(ctx context.Context) (entity.Frame, error) {
	mat := gocv.NewMat()
	for {
		if err := ctx.Err(); err != nil {
			mat.Close()
			return nil, err
		}
		if ok := c.vc.Read(&mat); !ok {
			mat.Close()
			return nil, errors.New("video stream closed")
		}
		if !mat.Empty() {
			break
		}
	}
	c.seq++
	return &MatFrame{Mat: mat, seq: c.seq}, nil
}

func (c *Capture) Close() error {
	return c.vc.Close()
}

var _ port.FrameSource = (*Capture)(nil)
