package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSerialLog_AppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "serial_numbers.txt")
	log, err := OpenFileSerialLog(path)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.Append("SN001"))
	require.NoError(t, log.Append("SN002"))

	entries, err := log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"SN001", "SN002"}, entries)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "SN001\nSN002\n", string(raw))
}

func TestFileSerialLog_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial_numbers.txt")
	require.NoError(t, os.WriteFile(path, []byte("OLD1\nOLD2\n"), 0o644))

	log, err := OpenFileSerialLog(path)
	require.NoError(t, err)
	defer log.Close()

	entries, err := log.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, log.Truncate())
	require.NoError(t, log.Append("SN010"))

	entries, err = log.ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"SN010"}, entries)
}

func TestFileSerialLog_RejectsLineBreaks(t *testing.T) {
	log, err := OpenFileSerialLog(filepath.Join(t.TempDir(), "serial_numbers.txt"))
	require.NoError(t, err)
	defer log.Close()

	require.Error(t, log.Append("SN\n001"))
	entries, err := log.ReadAll()
	require.NoError(t, err)
	require.Empty(t, entries)
}
