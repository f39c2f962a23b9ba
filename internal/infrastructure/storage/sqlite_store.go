package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore локальное хранилище users/farms/panels для работы без облака.
// Пользователи и фермы обходятся в порядке вставки (rowid).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore открывает или создаёт базу и применяет схему.
// ":memory:" даёт базу в памяти.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Одно соединение: иначе каждая :memory: база своя, а запись сериализуется всё равно.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			start_inspection_timer INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS farms (
			user_id TEXT NOT NULL REFERENCES users(id),
			id TEXT NOT NULL,
			inspection_started INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS panels (
			user_id TEXT NOT NULL,
			farm_id TEXT NOT NULL,
			id TEXT NOT NULL,
			serial_number TEXT NOT NULL,
			panel_status INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (user_id, farm_id, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_panels_serial ON panels(user_id, farm_id, serial_number);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddUser вставляет пользователя.
func (s *SQLiteStore) AddUser(ctx context.Context, u entity.UserRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, start_inspection_timer) VALUES (?, ?)",
		u.ID, u.StartInspectionTimer)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddFarm вставляет ферму пользователя.
func (s *SQLiteStore) AddFarm(ctx context.Context, userID string, f entity.FarmRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO farms (user_id, id, inspection_started) VALUES (?, ?, ?)",
		userID, f.ID, f.InspectionStarted)
	if err != nil {
		return fmt.Errorf("insert farm: %w", err)
	}
	return nil
}

// AddPanel вставляет панель фермы.
func (s *SQLiteStore) AddPanel(ctx context.Context, userID, farmID string, p entity.PanelRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO panels (user_id, farm_id, id, serial_number, panel_status) VALUES (?, ?, ?, ?, ?)",
		userID, farmID, p.ID, p.SerialNumber, p.PanelStatus)
	if err != nil {
		return fmt.Errorf("insert panel: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ScanUsers(ctx context.Context, visit func(entity.UserRecord) bool) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, start_inspection_timer FROM users ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	var users []entity.UserRecord
	for rows.Next() {
		var u entity.UserRecord
		if err := rows.Scan(&u.ID, &u.StartInspectionTimer); err != nil {
			rows.Close()
			return fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate users: %w", err)
	}
	rows.Close()

	for _, u := range users {
		if !visit(u) {
			break
		}
	}
	return nil
}

func (s *SQLiteStore) FirstFarm(ctx context.Context, userID string) (*entity.FarmRecord, error) {
	f := entity.FarmRecord{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, inspection_started FROM farms WHERE user_id = ? ORDER BY rowid LIMIT 1",
		userID).Scan(&f.ID, &f.InspectionStarted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query first farm: %w", err)
	}
	return &f, nil
}

func (s *SQLiteStore) FindPanels(ctx context.Context, userID, farmID, serial string) ([]entity.PanelRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, serial_number, panel_status FROM panels WHERE user_id = ? AND farm_id = ? AND serial_number = ? ORDER BY rowid",
		userID, farmID, serial)
	if err != nil {
		return nil, fmt.Errorf("query panels: %w", err)
	}
	defer rows.Close()

	var panels []entity.PanelRecord
	for rows.Next() {
		var p entity.PanelRecord
		if err := rows.Scan(&p.ID, &p.SerialNumber, &p.PanelStatus); err != nil {
			return nil, fmt.Errorf("scan panel: %w", err)
		}
		panels = append(panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate panels: %w", err)
	}
	return panels, nil
}

func (s *SQLiteStore) SetPanelStatus(ctx context.Context, userID, farmID, panelID string, healthy bool) error {
	return s.updateOne(ctx,
		"UPDATE panels SET panel_status = ? WHERE user_id = ? AND farm_id = ? AND id = ?",
		healthy, userID, farmID, panelID)
}

func (s *SQLiteStore) SetFarmInspectionStarted(ctx context.Context, userID, farmID string, started bool) error {
	return s.updateOne(ctx,
		"UPDATE farms SET inspection_started = ? WHERE user_id = ? AND id = ?",
		started, userID, farmID)
}

func (s *SQLiteStore) SetUserInspectionTimer(ctx context.Context, userID string, active bool) error {
	return s.updateOne(ctx,
		"UPDATE users SET start_inspection_timer = ? WHERE id = ?",
		active, userID)
}

// updateOne выполняет UPDATE и требует, чтобы запись существовала.
func (s *SQLiteStore) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.New("record not found")
	}
	return nil
}

var _ port.InspectionStore = (*SQLiteStore)(nil)
