package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultPath файл конфигурации по умолчанию
const DefaultPath = "solarsky.toml"

// Виды хранилища записей
const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
	StoreMemory    = "memory"
)

// Режимы вывода кадров
const (
	DisplayWindow   = "window"
	DisplayHeadless = "headless"
)

type Config struct {
	FrameSkip   int           `toml:"frame_skip"`
	CommandWait time.Duration `toml:"command_wait"`
	Speed       int           `toml:"speed"`
	LedgerPath  string        `toml:"ledger_path"`
	Display     string        `toml:"display"`

	Drone    DroneConfig    `toml:"drone"`
	Detector DetectorConfig `toml:"detector"`
	Store    StoreConfig    `toml:"store"`
	Telegram TelegramConfig `toml:"telegram"`
	NATS     NATSConfig     `toml:"nats"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Log      LogConfig      `toml:"log"`
}

type DroneConfig struct {
	Addr         string        `toml:"addr"`
	VideoURL     string        `toml:"video_url"`
	ReplyTimeout time.Duration `toml:"reply_timeout"`
}

type DetectorConfig struct {
	ModelPath      string  `toml:"model_path"`
	InputSize      int     `toml:"input_size"`
	ScoreThreshold float64 `toml:"score_threshold"`
	NMSThreshold   float64 `toml:"nms_threshold"`
	OCRLanguage    string  `toml:"ocr_language"`
}

type StoreConfig struct {
	Kind                 string `toml:"kind"`
	FirestoreProject     string `toml:"firestore_project"`
	FirestoreCredentials string `toml:"firestore_credentials"`
	SQLitePath           string `toml:"sqlite_path"`
}

type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID int64  `toml:"chat_id"`
}

type NATSConfig struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default значения по умолчанию
func Default() *Config {
	return &Config{
		FrameSkip:   5,
		CommandWait: 50 * time.Millisecond,
		Speed:       50,
		LedgerPath:  "serial_numbers.txt",
		Display:     DisplayWindow,
		Drone: DroneConfig{
			Addr:         "192.168.10.1:8889",
			VideoURL:     "udp://@0.0.0.0:11111",
			ReplyTimeout: 7 * time.Second,
		},
		Detector: DetectorConfig{
			ModelPath:      "weights/best.onnx",
			InputSize:      640,
			ScoreThreshold: 0.25,
			NMSThreshold:   0.7,
			OCRLanguage:    "eng",
		},
		Store: StoreConfig{
			Kind:       StoreFirestore,
			SQLitePath: "solarsky.db",
		},
		NATS: NATSConfig{SubjectPrefix: "solarsky"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML-файл, затем окружение.
// Отсутствующие .env и файл конфигурации не считаются ошибкой.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	var errs []error
	envInt("SOLARSKY_FRAME_SKIP", &c.FrameSkip, &errs)
	envDuration("SOLARSKY_COMMAND_WAIT", &c.CommandWait, &errs)
	envInt("SOLARSKY_SPEED", &c.Speed, &errs)
	envString("SOLARSKY_LEDGER_PATH", &c.LedgerPath)
	envString("SOLARSKY_DISPLAY", &c.Display)

	envString("SOLARSKY_DRONE_ADDR", &c.Drone.Addr)
	envString("SOLARSKY_VIDEO_URL", &c.Drone.VideoURL)
	envDuration("SOLARSKY_DRONE_REPLY_TIMEOUT", &c.Drone.ReplyTimeout, &errs)

	envString("SOLARSKY_MODEL_PATH", &c.Detector.ModelPath)
	envInt("SOLARSKY_MODEL_INPUT_SIZE", &c.Detector.InputSize, &errs)
	envFloat("SOLARSKY_SCORE_THRESHOLD", &c.Detector.ScoreThreshold, &errs)
	envFloat("SOLARSKY_NMS_THRESHOLD", &c.Detector.NMSThreshold, &errs)
	envString("SOLARSKY_OCR_LANGUAGE", &c.Detector.OCRLanguage)

	envString("SOLARSKY_STORE", &c.Store.Kind)
	envString("SOLARSKY_FIRESTORE_PROJECT", &c.Store.FirestoreProject)
	envString("GOOGLE_APPLICATION_CREDENTIALS", &c.Store.FirestoreCredentials)
	envString("SOLARSKY_SQLITE_PATH", &c.Store.SQLitePath)

	envString("TELEGRAM_TOKEN", &c.Telegram.Token)
	envInt64("TELEGRAM_CHAT_ID", &c.Telegram.ChatID, &errs)

	envString("NATS_URL", &c.NATS.URL)
	envString("SOLARSKY_NATS_SUBJECT_PREFIX", &c.NATS.SubjectPrefix)

	envString("SOLARSKY_METRICS_ADDR", &c.Metrics.Addr)
	envString("SOLARSKY_LOG_LEVEL", &c.Log.Level)
	envString("SOLARSKY_LOG_FORMAT", &c.Log.Format)
	return errors.Join(errs...)
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error
	if c.FrameSkip < 1 {
		errs = append(errs, fmt.Errorf("frame_skip must be at least 1, got %d", c.FrameSkip))
	}
	if c.CommandWait < 0 {
		errs = append(errs, fmt.Errorf("command_wait must not be negative, got %s", c.CommandWait))
	}
	if c.Speed < 1 || c.Speed > 100 {
		errs = append(errs, fmt.Errorf("speed must be within 1..100, got %d", c.Speed))
	}
	if c.LedgerPath == "" {
		errs = append(errs, errors.New("ledger_path is required"))
	}
	switch c.Display {
	case DisplayWindow, DisplayHeadless:
	default:
		errs = append(errs, fmt.Errorf("unknown display %q", c.Display))
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("telegram.chat_id is required when telegram.token is set"))
	}
	switch c.Store.Kind {
	case StoreFirestore:
		if c.Store.FirestoreProject == "" {
			errs = append(errs, errors.New("store.firestore_project is required for firestore store"))
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for sqlite store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func envInt64(key string, dst *int64, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func envFloat(key string, dst *float64, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}

func envDuration(key string, dst *time.Duration, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
