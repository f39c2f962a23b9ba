//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// TesseractRecognizer распознаватель текста на Tesseract.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseractRecognizer создаёт клиента Tesseract для языка lang (например "eng").
func NewTesseractRecognizer(lang string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &TesseractRecognizer{client: client}, nil
}

// Read распознаёт строки текста на всём кадре.
func (r *TesseractRecognizer) Read(ctx context.Context, frame entity.Frame) ([]entity.TextSpan, error) {
	_ = ctx
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("get bounding boxes: %w", err)
	}

	spans := make([]entity.TextSpan, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		spans = append(spans, entity.TextSpan{
			Text:       text,
			Confidence: b.Confidence / 100,
			Box:        entity.BoundingBox{X1: b.Box.Min.X, Y1: b.Box.Min.Y, X2: b.Box.Max.X, Y2: b.Box.Max.Y},
		})
	}
	return spans, nil
}

func (r *TesseractRecognizer) Close() error {
	return r.client.Close()
}

var _ port.TextRecognizer = (*TesseractRecognizer)(nil)
