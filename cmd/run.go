package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"solarsky/config"
	"solarsky/internal/container"
	"solarsky/internal/domain/port"
	"solarsky/internal/infrastructure/drone"
	"solarsky/internal/infrastructure/keyboard"
	"solarsky/internal/infrastructure/vision"
	"solarsky/internal/logging"
	"solarsky/internal/metrics"
)

func newRunCmd() *cobra.Command {
	var (
		frameSkip int
		display   string
		store     string
		ledger    string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fly the drone, detect defects and record serial numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(func(c *config.Config) {
				applyInt(cmd, "frame-skip", &c.FrameSkip, frameSkip)
				applyString(cmd, "display", &c.Display, display)
				applyString(cmd, "store", &c.Store.Kind, store)
				applyString(cmd, "ledger", &c.LedgerPath, ledger)
			})
			if err != nil {
				return err
			}
			return runInspection(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&frameSkip, "frame-skip", 5, "run detection on every N-th frame")
	cmd.Flags().StringVar(&display, "display", config.DisplayWindow, "frame output: window or headless")
	cmd.Flags().StringVar(&store, "store", config.StoreFirestore, "record store: firestore, sqlite or memory")
	cmd.Flags().StringVar(&ledger, "ledger", "serial_numbers.txt", "serial number ledger file")
	return cmd
}

func runInspection(ctx context.Context, cfg *config.Config) error {
	// Сборку без OpenCV отсекаем до подключения к дрону
	if !vision.Enabled {
		return fmt.Errorf("run needs a binary built with -tags gocv: %w", vision.ErrNotEnabled)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := &closer{}
	defer res.close()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	store, err := openStore(ctx, cfg, res)
	if err != nil {
		return err
	}
	serialLog, err := openSerialLog(cfg, res)
	if err != nil {
		return err
	}
	publisher, err := openPublisher(cfg, res)
	if err != nil {
		return err
	}
	bot, err := openBot(cfg)
	if err != nil {
		return err
	}

	// Модели загружаются до захвата дрона: ошибка здесь не должна оставлять его в режиме SDK
	detector, err := vision.NewYOLODetector(vision.DetectorConfig{
		ModelPath:      cfg.Detector.ModelPath,
		InputSize:      cfg.Detector.InputSize,
		ScoreThreshold: float32(cfg.Detector.ScoreThreshold),
		NMSThreshold:   float32(cfg.Detector.NMSThreshold),
	})
	if err != nil {
		return fmt.Errorf("load defect model: %w", err)
	}
	res.add("detector", detector.Close)
	recognizer, err := vision.NewTesseractRecognizer(cfg.Detector.OCRLanguage)
	if err != nil {
		return fmt.Errorf("init ocr: %w", err)
	}
	res.add("recognizer", recognizer.Close)

	tello, err := startDrone(ctx, cfg)
	if err != nil {
		return err
	}
	res.add("drone", tello.Close)

	source, err := vision.OpenCapture(cfg.Drone.VideoURL)
	if err != nil {
		_ = tello.StreamOff(context.Background())
		return fmt.Errorf("open video stream: %w", err)
	}

	keymap := keyboard.NewKeymap(cfg.Speed)
	var (
		renderer port.Renderer
		motion   port.MotionSource
		primary  port.OperatorInput
	)
	switch cfg.Display {
	case config.DisplayHeadless:
		term, err := keyboard.OpenTerminal(keymap)
		if err != nil {
			_ = source.Close()
			return err
		}
		res.add("terminal", term.Close)
		renderer, motion, primary = vision.Headless{}, term, term
	default:
		win, err := vision.OpenWindow("Image", keymap)
		if err != nil {
			_ = source.Close()
			return err
		}
		renderer, motion, primary = win, win, win
	}

	var (
		extra    []port.OperatorInput
		notifier port.Notifier
	)
	if bot != nil {
		extra = append(extra, bot)
		notifier = bot
	}

	c := container.New(container.Ports{
		Source:     source,
		Flight:     tello,
		Motion:     motion,
		Input:      keyboard.Merge(primary, extra...),
		Renderer:   renderer,
		Detector:   detector,
		Recognizer: recognizer,
		Store:      store,
		SerialLog:  serialLog,
		Publisher:  publisher,
		Notifier:   notifier,
		Recorder:   recorder,
	}, container.Options{
		FrameSkip:   cfg.FrameSkip,
		CommandWait: cfg.CommandWait,
	})
	if bot != nil {
		bot.Watch(c.Sessions, c.Ledger)
	}

	if err := c.Ledger.Reset(); err != nil {
		return fmt.Errorf("reset serial ledger: %w", err)
	}
	slog.Info("inspection run started", "run_id", c.RunID, "ledger", serialLog.Path())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return c.Loop.Run(gctx)
	})
	if cfg.Metrics.Addr != "" {
		serveMetrics(gctx, g, cfg.Metrics.Addr, reg)
	}
	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	return g.Wait()
}

// startDrone переводит дрон в режим SDK и перезапускает видеопоток.
func startDrone(ctx context.Context, cfg *config.Config) (*drone.Tello, error) {
	logger := logging.New("drone")

	tello, err := drone.Dial(cfg.Drone.Addr, cfg.Drone.ReplyTimeout)
	if err != nil {
		return nil, err
	}
	if err := tello.Connect(ctx); err != nil {
		_ = tello.Close()
		return nil, fmt.Errorf("connect to drone: %w", err)
	}
	if pct, err := tello.Battery(ctx); err != nil {
		logger.Warn("battery query failed", "error", err)
	} else {
		logger.Info("drone connected", "battery", pct)
	}
	if err := tello.StreamOff(ctx); err != nil {
		logger.Warn("streamoff failed", "error", err)
	}
	if err := tello.StreamOn(ctx); err != nil {
		_ = tello.Close()
		return nil, fmt.Errorf("start video stream: %w", err)
	}
	return tello, nil
}

// serveMetrics поднимает /metrics и гасит сервер при отмене ctx.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry) {
	logger := logging.New("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
