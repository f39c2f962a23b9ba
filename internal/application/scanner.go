package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
	"solarsky/internal/metrics"
)

// ScanResult итог обработки одного кадра.
type ScanResult struct {
	Detections   []entity.Detection
	Recognitions int      // сколько раз запускался OCR
	Serials      []string // новые номера, записанные в журнал
}

// FrameScanner объединяет детектор дефектов и распознаватель серийных номеров.
type FrameScanner struct {
	detector   port.DefectDetector
	recognizer port.TextRecognizer
	ledger     *SerialLedger
	renderer   port.Renderer
	publisher  port.EventPublisher
	recorder   metrics.Recorder
	logger     *slog.Logger
	runID      string
}

// NewFrameScanner создаёт сканер кадров. publisher и recorder могут быть nil.
func NewFrameScanner(detector port.DefectDetector, recognizer port.TextRecognizer, ledger *SerialLedger,
	renderer port.Renderer, publisher port.EventPublisher, recorder metrics.Recorder, logger *slog.Logger, runID string) *FrameScanner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameScanner{
		detector:   detector,
		recognizer: recognizer,
		ledger:     ledger,
		renderer:   renderer,
		publisher:  publisher,
		recorder:   recorder,
		logger:     logger,
		runID:      runID,
	}
}

// Scan прогоняет кадр через детектор, для трещин и пыли ищет серийные номера
// и рисует разметку на кадре.
func (s *FrameScanner) Scan(ctx context.Context, frame entity.Frame) (*ScanResult, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	start := time.Now()
	detections, err := s.detector.Score(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("score frame %d: %w", frame.Seq(), err)
	}
	s.recorder.ObserveStageDuration("detect", time.Since(start))

	result := &ScanResult{Detections: detections}
	for _, d := range detections {
		s.recorder.IncDetection(d.Class.String())

		if d.Class.RequiresSerialScan() {
			// OCR идёт по всему кадру на каждую подходящую детекцию
			serials, err := s.readSerials(ctx, frame)
			if err != nil {
				return nil, err
			}
			result.Recognitions++
			result.Serials = append(result.Serials, serials...)
		}

		if s.renderer != nil {
			s.renderer.DrawDetection(frame, d)
		}
	}

	return result, nil
}

// readSerials распознаёт текст и записывает в журнал новые номера с достаточной уверенностью.
func (s *FrameScanner) readSerials(ctx context.Context, frame entity.Frame) ([]string, error) {
	if s.recognizer == nil {
		return nil, errors.New("text recognizer is not configured")
	}

	start := time.Now()
	spans, err := s.recognizer.Read(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("read text on frame %d: %w", frame.Seq(), err)
	}
	s.recorder.ObserveStageDuration("recognize", time.Since(start))
	s.recorder.IncRecognition()

	var recorded []string
	for _, span := range spans {
		if !span.QualifiesAsSerial() || s.ledger.Contains(span.Text) {
			continue
		}
		added, err := s.ledger.Add(span.Text)
		if err != nil {
			return nil, err
		}
		if !added {
			continue
		}

		s.logger.Info("potential serial number detected", "serial", span.Text, "confidence", span.Confidence)
		s.recorder.IncSerialRecorded()
		recorded = append(recorded, span.Text)
		s.publish(ctx, entity.Event{
			Type:       entity.EventSerialRecorded,
			RunID:      s.runID,
			At:         time.Now(),
			Serial:     span.Text,
			Confidence: span.Confidence,
		})
		if s.renderer != nil {
			s.renderer.DrawSerial(frame, span)
		}
	}
	return recorded, nil
}

// publish отправляет событие; сбой публикации не останавливает инспекцию.
func (s *FrameScanner) publish(ctx context.Context, event entity.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", "type", event.Type, "error", err)
	}
}
