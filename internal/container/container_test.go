package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"solarsky/internal/domain/entity"
	"solarsky/internal/infrastructure/storage"
)

func TestNew_ReconcileOnlyAssembly(t *testing.T) {
	log, err := storage.OpenFileSerialLog(filepath.Join(t.TempDir(), "serials.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	store := storage.NewMemoryStore()
	store.AddUser(entity.UserRecord{ID: "inspector", StartInspectionTimer: true})
	require.NoError(t, store.AddFarm("inspector", entity.FarmRecord{ID: "farm-1"}))
	require.NoError(t, store.AddPanel("inspector", "farm-1", entity.PanelRecord{ID: "p1", SerialNumber: "SN001", PanelStatus: true}))

	c := New(Ports{Store: store, SerialLog: log}, Options{})

	_, err = uuid.Parse(c.RunID)
	require.NoError(t, err)
	require.Nil(t, c.Loop)

	added, err := c.Ledger.Add("SN001")
	require.NoError(t, err)
	require.True(t, added)

	report, err := c.Sessions.Land(context.Background())
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeReconciled, report.Outcome)
	require.Equal(t, c.RunID, report.RunID)
	require.Equal(t, 1, report.PanelsMarked)
}

func TestNew_KeepsGivenRunID(t *testing.T) {
	c := New(Ports{Store: storage.NewMemoryStore()}, Options{RunID: "run-7"})
	require.Equal(t, "run-7", c.RunID)
}
