package main

import (
	"context"
	"fmt"
	"log/slog"

	"solarsky/config"
	telegram "solarsky/internal/api"
	"solarsky/internal/domain/port"
	"solarsky/internal/infrastructure/events"
	"solarsky/internal/infrastructure/storage"
	"solarsky/internal/logging"
)

// closer собирает функции освобождения ресурсов и вызывает их в обратном порядке.
type closer struct {
	fns []func() error
}

func (c *closer) add(name string, fn func() error) {
	c.fns = append(c.fns, func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		return nil
	})
}

func (c *closer) close() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			slog.Warn("release resource failed", "error", err)
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, res *closer) (port.InspectionStore, error) {
	switch cfg.Store.Kind {
	case config.StoreFirestore:
		store, err := storage.NewFirestoreStore(ctx, cfg.Store.FirestoreProject, cfg.Store.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		res.add("firestore", store.Close)
		return store, nil
	case config.StoreSQLite:
		store, err := storage.OpenSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		res.add("sqlite", store.Close)
		return store, nil
	case config.StoreMemory:
		slog.Warn("using empty in-memory store, reconciliation results are not persisted")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func openSerialLog(cfg *config.Config, res *closer) (*storage.FileSerialLog, error) {
	log, err := storage.OpenFileSerialLog(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	res.add("serial log", log.Close)
	return log, nil
}

// openPublisher возвращает nil, если NATS не настроен.
func openPublisher(cfg *config.Config, res *closer) (port.EventPublisher, error) {
	if cfg.NATS.URL == "" {
		return nil, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logging.New("events"))
	if err != nil {
		return nil, err
	}
	res.add("nats", pub.Close)
	return pub, nil
}

// openBot возвращает nil, если токен Telegram не задан.
func openBot(cfg *config.Config) (*telegram.Bot, error) {
	if cfg.Telegram.Token == "" {
		return nil, nil
	}
	return telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, logging.New("telegram"))
}
