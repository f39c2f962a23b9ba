//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// YOLODetector классификатор дефектов на ONNX-модели YOLOv8 через gocv DNN.
type YOLODetector struct {
	net gocv.Net
	cfg DetectorConfig
}

// NewYOLODetector загружает модель.
func NewYOLODetector(cfg DetectorConfig) (*YOLODetector, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", cfg.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set dnn backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set dnn target: %w", err)
	}
	return &YOLODetector{net: net, cfg: cfg}, nil
}

// Score запускает модель на кадре. Результаты идут в порядке после NMS.
func (d *YOLODetector) Score(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	_ = ctx
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	size := d.cfg.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	// Выход YOLOv8: [1, 4+классы, кандидаты]
	dims := out.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	rows, candidates := dims[1], dims[2]

	flat := out.Reshape(1, rows)
	defer flat.Close()
	preds := gocv.NewMat()
	defer preds.Close()
	gocv.Transpose(flat, &preds)

	xScale := float32(mat.Cols()) / float32(size)
	yScale := float32(mat.Rows()) / float32(size)

	boxes := make([]image.Rectangle, 0, 16)
	scores := make([]float32, 0, 16)
	classes := make([]int, 0, 16)
	for i := 0; i < candidates; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < rows-4; c++ {
			if s := preds.GetFloatAt(i, 4+c); s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < d.cfg.ScoreThreshold {
			continue
		}

		cx, cy := preds.GetFloatAt(i, 0), preds.GetFloatAt(i, 1)
		w, h := preds.GetFloatAt(i, 2), preds.GetFloatAt(i, 3)
		boxes = append(boxes, image.Rect(
			int((cx-w/2)*xScale), int((cy-h/2)*yScale),
			int((cx+w/2)*xScale), int((cy+h/2)*yScale),
		))
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, d.cfg.ScoreThreshold, d.cfg.NMSThreshold)
	detections := make([]entity.Detection, 0, len(keep))
	for _, idx := range keep {
		class, err := entity.DefectClassFromIndex(classes[idx])
		if err != nil {
			continue
		}
		r := boxes[idx]
		detections = append(detections, entity.Detection{
			Class:      class,
			Confidence: float64(scores[idx]),
			Box:        entity.BoundingBox{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y},
		})
	}
	return detections, nil
}

// Close освобождает сеть.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}

var _ port.DefectDetector = (*YOLODetector)(nil)
