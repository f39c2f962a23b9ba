package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialLedger_AddIsIdempotent(t *testing.T) {
	ledger, log := newTestLedger(t)

	for i := 0; i < 3; i++ {
		_, err := ledger.Add("SN001")
		require.NoError(t, err)
	}
	added, err := ledger.Add("SN002")
	require.NoError(t, err)
	require.True(t, added)

	added, err = ledger.Add("SN001")
	require.NoError(t, err)
	require.False(t, added)

	entries, err := ledger.AllEntries()
	require.NoError(t, err)
	require.Equal(t, []string{"SN001", "SN002"}, entries)
	require.Equal(t, 2, ledger.Len())

	raw, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	require.Equal(t, "SN001\nSN002\n", string(raw))
}

func TestSerialLedger_ResetClearsState(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Add("SN001")
	require.NoError(t, err)
	require.True(t, ledger.Contains("SN001"))

	require.NoError(t, ledger.Reset())

	require.False(t, ledger.Contains("SN001"))
	entries, err := ledger.AllEntries()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSerialLedger_AppendFailureKeepsSetClean(t *testing.T) {
	ledger, log := newTestLedger(t)
	require.NoError(t, log.Close())

	_, err := ledger.Add("SN001")
	require.Error(t, err)
	require.False(t, ledger.Contains("SN001"))
}

func TestSerialLedger_EntriesComeFromDurableLog(t *testing.T) {
	ledger, log := newTestLedger(t)
	_, err := ledger.Add("SN001")
	require.NoError(t, err)

	// Запись мимо набора видна в AllEntries: сверка опирается на файл
	require.NoError(t, log.Append("SN-EXTERNAL"))

	entries, err := ledger.AllEntries()
	require.NoError(t, err)
	require.Equal(t, []string{"SN001", "SN-EXTERNAL"}, entries)
	require.False(t, ledger.Contains("SN-EXTERNAL"))
}

func TestSerialLedger_RejectsEmptySerial(t *testing.T) {
	ledger, log := newTestLedger(t)

	added, err := ledger.Add("")
	require.ErrorIs(t, err, ErrEmptySerial)
	require.False(t, added)
	require.False(t, ledger.Contains(""))
	require.Equal(t, 0, ledger.Len())

	entries, err := ledger.AllEntries()
	require.NoError(t, err)
	require.Empty(t, entries)

	raw, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	require.Empty(t, raw)
}
