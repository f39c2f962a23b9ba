package keyboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// Terminal читает клавиши из stdin в raw-режиме. Используется без окна OpenCV.
type Terminal struct {
	keymap  *Keymap
	keys    chan rune
	errs    chan error
	restore func() error
}

// OpenTerminal переводит stdin в raw-режим и запускает чтение клавиш.
func OpenTerminal(keymap *Keymap) (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("make raw terminal: %w", err)
	}

	t := NewReaderInput(os.Stdin, keymap)
	t.restore = func() error { return term.Restore(fd, state) }
	return t, nil
}

// NewReaderInput читает клавиши из произвольного потока.
func NewReaderInput(r io.Reader, keymap *Keymap) *Terminal {
	t := &Terminal{
		keymap: keymap,
		keys:   make(chan rune, 64),
		errs:   make(chan error, 1),
	}
	go t.read(bufio.NewReader(r))
	return t
}

func (t *Terminal) read(r *bufio.Reader) {
	for {
		key, err := readKey(r)
		if err != nil {
			t.errs <- err
			close(t.keys)
			return
		}
		// Переполнение буфера отбрасывает клавишу: оператор нажмёт ещё раз
		select {
		case t.keys <- key:
		default:
		}
	}
}

// readKey читает одну клавишу, разбирая ESC-последовательности стрелок.
func readKey(r *bufio.Reader) (rune, error) {
	ch, _, err := r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch != 0x1b {
		return ch, nil
	}
	if r.Buffered() < 2 {
		return ch, nil
	}
	if b, _ := r.ReadByte(); b != '[' {
		return ch, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case 'A':
		return KeyUp, nil
	case 'B':
		return KeyDown, nil
	case 'C':
		return KeyRight, nil
	case 'D':
		return KeyLeft, nil
	}
	return ch, nil
}

// Poll ждёт клавишу не дольше wait. Все успевшие прийти клавиши скармливаются раскладке.
func (t *Terminal) Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return entity.CommandNone, nil
	case <-timer.C:
		return entity.CommandNone, nil
	case key, ok := <-t.keys:
		if !ok {
			return entity.CommandNone, t.readErr()
		}
		cmd := t.keymap.Feed(key)
		for cmd == entity.CommandNone {
			select {
			case key, ok = <-t.keys:
				if !ok {
					return entity.CommandNone, nil
				}
				cmd = t.keymap.Feed(key)
			default:
				return entity.CommandNone, nil
			}
		}
		return cmd, nil
	}
}

func (t *Terminal) readErr() error {
	select {
	case err := <-t.errs:
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("operator input closed: %w", err)
		}
		return err
	default:
		return errors.New("operator input closed")
	}
}

// CurrentCommand команда движения из раскладки
func (t *Terminal) CurrentCommand() entity.MotionCommand {
	return t.keymap.CurrentCommand()
}

// Close возвращает терминал в обычный режим.
func (t *Terminal) Close() error {
	if t.restore == nil {
		return nil
	}
	return t.restore()
}

var (
	_ port.OperatorInput = (*Terminal)(nil)
	_ port.MotionSource  = (*Terminal)(nil)
)
