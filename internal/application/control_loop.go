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

// DefaultCommandWait время ожидания команды оператора на каждом тике
const DefaultCommandWait = 50 * time.Millisecond

// ControlLoop основной цикл: кадр, команда движения, детекция, вывод, опрос оператора.
type ControlLoop struct {
	source   port.FrameSource
	flight   port.FlightController
	motion   port.MotionSource
	input    port.OperatorInput
	renderer port.Renderer
	throttle *Throttle
	scanner  *FrameScanner
	sessions *InspectionSessionManager
	wait     time.Duration
	recorder metrics.Recorder
	logger   *slog.Logger

	airborne bool // дрон взлетел по команде цикла и ещё не садился
}

// LoopDeps зависимости цикла управления
type LoopDeps struct {
	Source      port.FrameSource
	Flight      port.FlightController
	Motion      port.MotionSource
	Input       port.OperatorInput
	Renderer    port.Renderer
	Throttle    *Throttle
	Scanner     *FrameScanner
	Sessions    *InspectionSessionManager
	CommandWait time.Duration
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// NewControlLoop создаёт цикл управления.
func NewControlLoop(deps LoopDeps) *ControlLoop {
	l := &ControlLoop{
		source:   deps.Source,
		flight:   deps.Flight,
		motion:   deps.Motion,
		input:    deps.Input,
		renderer: deps.Renderer,
		throttle: deps.Throttle,
		scanner:  deps.Scanner,
		sessions: deps.Sessions,
		wait:     deps.CommandWait,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
	if l.throttle == nil {
		l.throttle = NewThrottle(DefaultFrameSkip)
	}
	if l.wait <= 0 {
		l.wait = DefaultCommandWait
	}
	if l.recorder == nil {
		l.recorder = metrics.NoopRecorder{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Run крутит цикл до команды quit или первой фатальной ошибки.
// При выходе дрон в воздухе сажается, видеопоток выключается, окно и источник кадров закрываются.
func (l *ControlLoop) Run(ctx context.Context) (err error) {
	defer func() {
		err = errors.Join(err, l.shutdown())
	}()

	for {
		stop, err := l.Tick(ctx)
		if err != nil {
			return err
		}
		if stop {
			l.logger.Info("quit requested, stopping control loop", "ticks", l.throttle.Ticks())
			return nil
		}
	}
}

// Tick выполняет один шаг цикла. stop=true, если оператор запросил выход.
func (l *ControlLoop) Tick(ctx context.Context) (stop bool, err error) {
	frame, err := l.source.NextFrame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		return false, fmt.Errorf("next frame: %w", err)
	}
	defer frame.Close()

	// Команды движения уходят на каждом тике, независимо от прореживания
	if err := l.fly(ctx); err != nil {
		return false, err
	}

	if l.throttle.Next() {
		l.recorder.IncTick(metrics.TickProcessed)
		if l.scanner != nil {
			if _, err := l.scanner.Scan(ctx, frame); err != nil {
				return false, err
			}
		}
	} else {
		l.recorder.IncTick(metrics.TickSkipped)
	}

	if l.renderer != nil {
		if err := l.renderer.Show(frame); err != nil {
			return false, fmt.Errorf("show frame: %w", err)
		}
	}

	cmd, err := l.input.Poll(ctx, l.wait)
	if err != nil {
		return false, fmt.Errorf("poll operator input: %w", err)
	}
	if ctx.Err() != nil {
		// Сигнал остановки процесса трактуется как quit
		return true, nil
	}

	switch cmd {
	case entity.CommandQuit:
		return true, nil
	case entity.CommandLand:
		if _, err := l.sessions.Land(ctx); err != nil {
			return false, fmt.Errorf("land reconciliation: %w", err)
		}
	}
	return false, nil
}

func (l *ControlLoop) fly(ctx context.Context) error {
	if l.flight == nil || l.motion == nil {
		return nil
	}

	cmd := l.motion.CurrentCommand()
	if err := l.flight.SendRC(ctx, cmd); err != nil {
		return fmt.Errorf("send rc: %w", err)
	}
	if cmd.Takeoff {
		if err := l.flight.Takeoff(ctx); err != nil {
			return fmt.Errorf("takeoff: %w", err)
		}
		l.airborne = true
	}
	if cmd.Land {
		if err := l.flight.Land(ctx); err != nil {
			return fmt.Errorf("land drone: %w", err)
		}
		l.airborne = false
	}
	return nil
}

func (l *ControlLoop) shutdown() error {
	var errs []error
	if l.flight != nil && l.airborne {
		l.logger.Info("landing drone before exit")
		if err := l.flight.Land(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("land drone: %w", err))
		} else {
			l.airborne = false
		}
	}
	if l.flight != nil {
		if err := l.flight.StreamOff(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("stream off: %w", err))
		}
	}
	if l.renderer != nil {
		if err := l.renderer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close renderer: %w", err))
		}
	}
	if err := l.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close frame source: %w", err))
	}
	return errors.Join(errs...)
}
