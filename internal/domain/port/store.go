package port

import (
	"context"

	"solarsky/internal/domain/entity"
)

// InspectionStore узкий контракт удалённого хранилища users/farms/panels
type InspectionStore interface {
	// ScanUsers обходит пользователей в порядке хранилища, пока visit возвращает true
	ScanUsers(ctx context.Context, visit func(entity.UserRecord) bool) error

	// FirstFarm возвращает первую ферму пользователя или nil, если ферм нет
	FirstFarm(ctx context.Context, userID string) (*entity.FarmRecord, error)

	// FindPanels ищет все панели фермы с данным серийным номером
	FindPanels(ctx context.Context, userID, farmID, serial string) ([]entity.PanelRecord, error)

	SetPanelStatus(ctx context.Context, userID, farmID, panelID string, healthy bool) error
	SetFarmInspectionStarted(ctx context.Context, userID, farmID string, started bool) error
	SetUserInspectionTimer(ctx context.Context, userID string, active bool) error
}

// SerialLog долговременный журнал серийных номеров, по одному в строке
type SerialLog interface {
	Truncate() error
	// Append дописывает строку и сбрасывает её на диск до возврата
	Append(serial string) error
	ReadAll() ([]string, error)
	Close() error
}
