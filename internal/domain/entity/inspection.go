package entity

// SessionState состояние сессии инспекции
type SessionState string

const (
	StateIdle        SessionState = "idle"        // Сессия не выбрана
	StateInspecting  SessionState = "inspecting"  // Найден инспектирующий пользователь
	StateReconciling SessionState = "reconciling" // Идёт сверка номеров с хранилищем
)

// UserRecord пользователь в удалённом хранилище
type UserRecord struct {
	ID                   string
	StartInspectionTimer bool // пользователь сейчас проводит инспекцию
}

// FarmRecord ферма пользователя
type FarmRecord struct {
	ID                string
	UserID            string
	InspectionStarted bool
}

// PanelRecord панель фермы
type PanelRecord struct {
	ID           string
	SerialNumber string
	PanelStatus  bool // true: исправна
}

// ReconciliationOutcome итог сверки
type ReconciliationOutcome string

const (
	OutcomeNoInspectingUser ReconciliationOutcome = "no_inspecting_user"
	OutcomeNoFarm           ReconciliationOutcome = "no_farm"
	OutcomeReconciled       ReconciliationOutcome = "reconciled"
)

// ReconciliationReport хранит итог одной сверки.
type ReconciliationReport struct {
	RunID          string
	UserID         string
	FarmID         string
	Outcome        ReconciliationOutcome
	SerialsChecked int // сколько номеров из журнала проверено
	PanelsMarked   int // сколько панелей помечено неисправными
}
