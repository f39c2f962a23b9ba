package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"solarsky/internal/domain/port"
)

// FileSerialLog журнал серийных номеров в текстовом файле, по номеру в строке
type FileSerialLog struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// OpenFileSerialLog открывает (или создаёт) файл журнала для дозаписи. Содержимое не трогается.
func OpenFileSerialLog(path string) (*FileSerialLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	return &FileSerialLog{path: path, file: f}, nil
}

// Path путь к файлу журнала
func (l *FileSerialLog) Path() string { return l.path }

// Truncate очищает файл.
func (l *FileSerialLog) Truncate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Truncate(0); err != nil {
		return err
	}
	return l.file.Sync()
}

// Append дописывает номер и синхронизирует файл.
func (l *FileSerialLog) Append(serial string) error {
	if strings.ContainsAny(serial, "\r\n") {
		return fmt.Errorf("serial %q contains a line break", serial)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.WriteString(serial + "\n"); err != nil {
		return err
	}
	return l.file.Sync()
}

// ReadAll читает все строки журнала в порядке записи.
func (l *FileSerialLog) ReadAll() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close закрывает файл журнала.
func (l *FileSerialLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

var _ port.SerialLog = (*FileSerialLog)(nil)
