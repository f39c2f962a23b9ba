package storage

import (
	"context"
	"fmt"
	"sync"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

type memoryFarm struct {
	record entity.FarmRecord
	panels []*entity.PanelRecord
}

type memoryUser struct {
	record entity.UserRecord
	farms  []*memoryFarm
}

// MemoryStore in-memory хранилище users/farms/panels. Обход идёт в порядке добавления.
type MemoryStore struct {
	mu    sync.RWMutex
	users []*memoryUser
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddUser добавляет пользователя
func (s *MemoryStore) AddUser(u entity.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, &memoryUser{record: u})
}

// AddFarm добавляет ферму пользователю
func (s *MemoryStore) AddFarm(userID string, f entity.FarmRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if u == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	f.UserID = userID
	u.farms = append(u.farms, &memoryFarm{record: f})
	return nil
}

// AddPanel добавляет панель на ферму
func (s *MemoryStore) AddPanel(userID, farmID string, p entity.PanelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.farm(userID, farmID)
	if err != nil {
		return err
	}
	f.panels = append(f.panels, &p)
	return nil
}

// User возвращает копию записи пользователя
func (s *MemoryStore) User(userID string) (entity.UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.user(userID); u != nil {
		return u.record, true
	}
	return entity.UserRecord{}, false
}

// Farm возвращает копию записи фермы
func (s *MemoryStore) Farm(userID, farmID string) (entity.FarmRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := s.farm(userID, farmID)
	if err != nil {
		return entity.FarmRecord{}, false
	}
	return f.record, true
}

// Panels возвращает копии панелей фермы
func (s *MemoryStore) Panels(userID, farmID string) []entity.PanelRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := s.farm(userID, farmID)
	if err != nil {
		return nil
	}
	out := make([]entity.PanelRecord, 0, len(f.panels))
	for _, p := range f.panels {
		out = append(out, *p)
	}
	return out
}

func (s *MemoryStore) ScanUsers(ctx context.Context, visit func(entity.UserRecord) bool) error {
	s.mu.RLock()
	users := make([]entity.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.record)
	}
	s.mu.RUnlock()

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !visit(u) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) FirstFarm(ctx context.Context, userID string) (*entity.FarmRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.user(userID)
	if u == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	if len(u.farms) == 0 {
		return nil, nil
	}
	f := u.farms[0].record
	return &f, nil
}

func (s *MemoryStore) FindPanels(ctx context.Context, userID, farmID, serial string) ([]entity.PanelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.farm(userID, farmID)
	if err != nil {
		return nil, err
	}
	var out []entity.PanelRecord
	for _, p := range f.panels {
		if p.SerialNumber == serial {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetPanelStatus(ctx context.Context, userID, farmID, panelID string, healthy bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.farm(userID, farmID)
	if err != nil {
		return err
	}
	for _, p := range f.panels {
		if p.ID == panelID {
			p.PanelStatus = healthy
			return nil
		}
	}
	return fmt.Errorf("panel %s not found", panelID)
}

func (s *MemoryStore) SetFarmInspectionStarted(ctx context.Context, userID, farmID string, started bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.farm(userID, farmID)
	if err != nil {
		return err
	}
	f.record.InspectionStarted = started
	return nil
}

func (s *MemoryStore) SetUserInspectionTimer(ctx context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if u == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	u.record.StartInspectionTimer = active
	return nil
}

func (s *MemoryStore) user(userID string) *memoryUser {
	for _, u := range s.users {
		if u.record.ID == userID {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) farm(userID, farmID string) (*memoryFarm, error) {
	u := s.user(userID)
	if u == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	for _, f := range u.farms {
		if f.record.ID == farmID {
			return f, nil
		}
	}
	return nil, fmt.Errorf("farm %s of user %s not found", farmID, userID)
}

// Проверка реализации интерфейса
var _ port.InspectionStore = (*MemoryStore)(nil)
