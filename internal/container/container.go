package container

import (
	"time"

	"github.com/google/uuid"

	app "solarsky/internal/application"
	"solarsky/internal/domain/port"
	"solarsky/internal/logging"
	"solarsky/internal/metrics"
)

// Ports адаптеры инфраструктуры. Видео и управление могут отсутствовать
// для команд, которые не летают (reconcile).
type Ports struct {
	Source     port.FrameSource
	Flight     port.FlightController
	Motion     port.MotionSource
	Input      port.OperatorInput
	Renderer   port.Renderer
	Detector   port.DefectDetector
	Recognizer port.TextRecognizer

	Store     port.InspectionStore
	SerialLog port.SerialLog
	Publisher port.EventPublisher
	Notifier  port.Notifier
	Recorder  metrics.Recorder
}

type Options struct {
	FrameSkip   int
	CommandWait time.Duration
	RunID       string // пустой генерируется
}

type Container struct {
	RunID    string
	Ledger   *app.SerialLedger
	Scanner  *app.FrameScanner
	Sessions *app.InspectionSessionManager
	Loop     *app.ControlLoop
}

func New(p Ports, opts Options) *Container {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	recorder := p.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	ledger := app.NewSerialLedger(p.SerialLog)
	scanner := app.NewFrameScanner(p.Detector, p.Recognizer, ledger, p.Renderer, p.Publisher, recorder,
		logging.New("scanner"), runID)
	sessions := app.NewInspectionSessionManager(p.Store, ledger, p.Publisher, p.Notifier, recorder,
		logging.New("session"), runID)

	var loop *app.ControlLoop
	if p.Source != nil {
		loop = app.NewControlLoop(app.LoopDeps{
			Source:      p.Source,
			Flight:      p.Flight,
			Motion:      p.Motion,
			Input:       p.Input,
			Renderer:    p.Renderer,
			Throttle:    app.NewThrottle(opts.FrameSkip),
			Scanner:     scanner,
			Sessions:    sessions,
			CommandWait: opts.CommandWait,
			Recorder:    recorder,
			Logger:      logging.New("loop"),
		})
	}

	return &Container{
		RunID:    runID,
		Ledger:   ledger,
		Scanner:  scanner,
		Sessions: sessions,
		Loop:     loop,
	}
}
