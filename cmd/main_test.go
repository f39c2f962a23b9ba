package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solarsky/config"
	"solarsky/internal/domain/entity"
	"solarsky/internal/infrastructure/storage"
	"solarsky/internal/infrastructure/vision"
)

func TestPrintLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial_numbers.txt")
	log, err := storage.OpenFileSerialLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append("SN001"))
	require.NoError(t, log.Append("SN002"))
	require.NoError(t, log.Close())

	var out bytes.Buffer
	require.NoError(t, printLedger(path, &out))
	require.Equal(t, "SN001\nSN002\n", out.String())
}

func TestPrintReport(t *testing.T) {
	tests := []struct {
		name   string
		report entity.ReconciliationReport
		want   string
	}{
		{"no inspector", entity.ReconciliationReport{Outcome: entity.OutcomeNoInspectingUser}, "No user is currently inspecting.\n"},
		{"no farm", entity.ReconciliationReport{Outcome: entity.OutcomeNoFarm, UserID: "u1"}, "User u1 has no farms, nothing to reconcile.\n"},
		{"reconciled", entity.ReconciliationReport{
			Outcome: entity.OutcomeReconciled, UserID: "u1", FarmID: "f1", SerialsChecked: 3, PanelsMarked: 2,
		}, "Updated inspection data for user u1 and farm f1: 3 serials checked, 2 panels marked faulty.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printReport(&out, &tt.report)
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunReconcile_SQLiteStoreAndExistingLedger(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Kind = config.StoreSQLite
	cfg.Store.SQLitePath = filepath.Join(dir, "farm.db")
	cfg.LedgerPath = filepath.Join(dir, "serial_numbers.txt")

	ctx := context.Background()
	db, err := storage.OpenSQLiteStore(cfg.Store.SQLitePath)
	require.NoError(t, err)
	require.NoError(t, db.AddUser(ctx, entity.UserRecord{ID: "inspector", StartInspectionTimer: true}))
	require.NoError(t, db.AddFarm(ctx, "inspector", entity.FarmRecord{ID: "farm-1"}))
	require.NoError(t, db.AddPanel(ctx, "inspector", "farm-1", entity.PanelRecord{ID: "p1", SerialNumber: "SN001", PanelStatus: true}))
	require.NoError(t, db.AddPanel(ctx, "inspector", "farm-1", entity.PanelRecord{ID: "p2", SerialNumber: "SN002", PanelStatus: true}))
	require.NoError(t, db.Close())

	log, err := storage.OpenFileSerialLog(cfg.LedgerPath)
	require.NoError(t, err)
	require.NoError(t, log.Append("SN002"))
	require.NoError(t, log.Close())

	var out bytes.Buffer
	require.NoError(t, runReconcile(ctx, cfg, &out))
	require.Contains(t, out.String(), "1 serials checked, 1 panels marked faulty")

	db, err = storage.OpenSQLiteStore(cfg.Store.SQLitePath)
	require.NoError(t, err)
	defer db.Close()
	panels, err := db.FindPanels(ctx, "inspector", "farm-1", "SN002")
	require.NoError(t, err)
	require.Len(t, panels, 1)
	require.False(t, panels[0].PanelStatus)

	// Журнал после сверки сохраняется
	var ledger bytes.Buffer
	require.NoError(t, printLedger(cfg.LedgerPath, &ledger))
	require.Equal(t, "SN002\n", ledger.String())
}

func TestRunInspection_WithoutGoCVLeavesDroneAlone(t *testing.T) {
	if vision.Enabled {
		t.Skip("built with gocv")
	}
	drone, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer drone.Close()

	cfg := config.Default()
	cfg.Store.Kind = config.StoreMemory
	cfg.LedgerPath = filepath.Join(t.TempDir(), "serial_numbers.txt")
	cfg.Drone.Addr = drone.LocalAddr().String()

	err = runInspection(context.Background(), cfg)
	require.ErrorIs(t, err, vision.ErrNotEnabled)

	require.NoError(t, drone.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = drone.ReadFrom(make([]byte, 64))
	require.Error(t, err, "no command must reach the drone")
}
