package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
	"solarsky/internal/metrics"
)

// ErrNoInspectingUser ни у одного пользователя не выставлен StartInspectionTimer.
var ErrNoInspectingUser = errors.New("no user is currently inspecting")

// SerialEntries источник записанных за сессию номеров
type SerialEntries interface {
	AllEntries() ([]string, error)
}

// InspectionSessionManager ищет инспектирующего пользователя и сверяет журнал с его панелями.
type InspectionSessionManager struct {
	store     port.InspectionStore
	ledger    SerialEntries
	publisher port.EventPublisher
	notifier  port.Notifier
	recorder  metrics.Recorder
	logger    *slog.Logger
	runID     string

	mu    sync.RWMutex
	state entity.SessionState
}

// NewInspectionSessionManager создаёт менеджер сессии в состоянии Idle.
func NewInspectionSessionManager(store port.InspectionStore, ledger SerialEntries, publisher port.EventPublisher,
	notifier port.Notifier, recorder metrics.Recorder, logger *slog.Logger, runID string) *InspectionSessionManager {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InspectionSessionManager{
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		notifier:  notifier,
		recorder:  recorder,
		logger:    logger,
		runID:     runID,
		state:     entity.StateIdle,
	}
}

// State возвращает текущее состояние сессии.
func (m *InspectionSessionManager) State() entity.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *InspectionSessionManager) setState(state entity.SessionState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// FindInspectingUser возвращает первого в порядке хранилища пользователя с активной инспекцией.
func (m *InspectionSessionManager) FindInspectingUser(ctx context.Context) (*entity.UserRecord, error) {
	var found *entity.UserRecord
	err := m.store.ScanUsers(ctx, func(u entity.UserRecord) bool {
		if u.StartInspectionTimer {
			found = &u
			return false
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	if found == nil {
		return nil, ErrNoInspectingUser
	}

	m.setState(entity.StateInspecting)
	return found, nil
}

// Land выполняет сверку по команде посадки. Отсутствие инспектирующего пользователя
// или фермы не является ошибкой: сессия просто возвращается в Idle.
func (m *InspectionSessionManager) Land(ctx context.Context) (*entity.ReconciliationReport, error) {
	start := time.Now()
	report := &entity.ReconciliationReport{RunID: m.runID}
	defer func() {
		m.setState(entity.StateIdle)
		m.recorder.ObserveStageDuration("reconcile", time.Since(start))
	}()

	user, err := m.FindInspectingUser(ctx)
	if errors.Is(err, ErrNoInspectingUser) {
		m.logger.Info("No user is currently inspecting.")
		report.Outcome = entity.OutcomeNoInspectingUser
		m.recorder.IncReconciliation(string(report.Outcome))
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	report.UserID = user.ID

	m.setState(entity.StateReconciling)

	farm, err := m.store.FirstFarm(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("first farm of user %s: %w", user.ID, err)
	}
	if farm == nil {
		report.Outcome = entity.OutcomeNoFarm
		m.recorder.IncReconciliation(string(report.Outcome))
		return report, nil
	}
	report.FarmID = farm.ID

	if err := m.reconcilePanels(ctx, user.ID, farm.ID, report); err != nil {
		return nil, err
	}

	if err := m.store.SetFarmInspectionStarted(ctx, user.ID, farm.ID, true); err != nil {
		return nil, fmt.Errorf("set InspectionStarted for farm %s: %w", farm.ID, err)
	}
	m.logger.Info("InspectionStarted status set to true", "user", user.ID, "farm", farm.ID)

	if err := m.store.SetUserInspectionTimer(ctx, user.ID, false); err != nil {
		return nil, fmt.Errorf("reset StartInspectionTimer for user %s: %w", user.ID, err)
	}
	m.logger.Info("StartInspectionTimer reset to false", "user", user.ID)

	report.Outcome = entity.OutcomeReconciled
	m.recorder.IncReconciliation(string(report.Outcome))
	m.recorder.AddPanelsMarked(report.PanelsMarked)
	m.logger.Info("updated inspection data",
		"user", user.ID,
		"farm", farm.ID,
		"serials", report.SerialsChecked,
		"panels_marked", report.PanelsMarked)

	m.announce(ctx, report)
	return report, nil
}

// reconcilePanels помечает неисправными все панели фермы, чьи номера есть в журнале.
func (m *InspectionSessionManager) reconcilePanels(ctx context.Context, userID, farmID string, report *entity.ReconciliationReport) error {
	serials, err := m.ledger.AllEntries()
	if err != nil {
		return err
	}

	for _, serial := range serials {
		report.SerialsChecked++
		panels, err := m.store.FindPanels(ctx, userID, farmID, serial)
		if err != nil {
			return fmt.Errorf("find panels with serial %q: %w", serial, err)
		}
		for _, p := range panels {
			if err := m.store.SetPanelStatus(ctx, userID, farmID, p.ID, false); err != nil {
				return fmt.Errorf("update panel %s: %w", p.ID, err)
			}
			report.PanelsMarked++
			m.logger.Info("panel status updated to false", "serial", serial, "panel", p.ID)
		}
	}
	return nil
}

// announce сообщает об итогах сверки наружу; ошибки только логируются.
func (m *InspectionSessionManager) announce(ctx context.Context, report *entity.ReconciliationReport) {
	if m.publisher != nil {
		event := entity.Event{
			Type:   entity.EventSessionReconciled,
			RunID:  m.runID,
			At:     time.Now(),
			Report: report,
		}
		if err := m.publisher.Publish(ctx, event); err != nil {
			m.logger.Warn("publish event failed", "type", event.Type, "error", err)
		}
	}
	if m.notifier != nil {
		text := fmt.Sprintf("✅ Инспекция фермы %s завершена: проверено номеров %d, неисправных панелей %d.",
			report.FarmID, report.SerialsChecked, report.PanelsMarked)
		if err := m.notifier.Notify(ctx, text); err != nil {
			m.logger.Warn("notify operator failed", "error", err)
		}
	}
}
