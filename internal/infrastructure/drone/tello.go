package drone

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
)

// DefaultAddr адрес командного порта Tello
const DefaultAddr = "192.168.10.1:8889"

const defaultReplyTimeout = 7 * time.Second

// drainWait сколько ждать каждый залежавшийся в сокете ответ
const drainWait = 2 * time.Millisecond

// Tello клиент текстового SDK дрона Tello поверх UDP.
type Tello struct {
	conn    net.Conn
	timeout time.Duration
	mu      sync.Mutex
}

// Dial открывает UDP-сокет к дрону. Соединение ещё не переведено в SDK-режим, см. Connect.
func Dial(addr string, replyTimeout time.Duration) (*Tello, error) {
	if replyTimeout <= 0 {
		replyTimeout = defaultReplyTimeout
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tello %s: %w", addr, err)
	}
	return &Tello{conn: conn, timeout: replyTimeout}, nil
}

// Connect переводит дрон в режим SDK.
func (t *Tello) Connect(ctx context.Context) error {
	_, err := t.exec(ctx, "command")
	return err
}

// exec отправляет команду и ждёт ответ. "error" от дрона превращается в ошибку.
func (t *Tello) exec(ctx context.Context, cmd string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.drain()

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetDeadline(deadline); err != nil {
		return "", err
	}
	defer t.conn.SetDeadline(time.Time{})
	if _, err := t.conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}

	buf := make([]byte, 1024)
	n, err := t.conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("reply to %q: %w", cmd, err)
	}
	reply := strings.TrimSpace(string(buf[:n]))
	if strings.HasPrefix(reply, "error") {
		return "", fmt.Errorf("tello rejected %q: %s", cmd, reply)
	}
	return reply, nil
}

// drain выбрасывает ответы, пришедшие после таймаута прошлых команд,
// чтобы они не были приняты за ответ на следующую.
func (t *Tello) drain() {
	defer t.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, 1024)
	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(drainWait)); err != nil {
			return
		}
		if _, err := t.conn.Read(buf); err != nil {
			return
		}
	}
}

// send отправляет команду без ожидания ответа.
func (t *Tello) send(cmd string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	return nil
}

// SendRC отправляет значения четырёх каналов пульта. Дрон на rc не отвечает.
func (t *Tello) SendRC(ctx context.Context, cmd entity.MotionCommand) error {
	cmd = cmd.Clamp(100)
	return t.send(fmt.Sprintf("rc %d %d %d %d", cmd.LeftRight, cmd.ForwardBack, cmd.UpDown, cmd.Yaw))
}

func (t *Tello) Takeoff(ctx context.Context) error {
	_, err := t.exec(ctx, "takeoff")
	return err
}

func (t *Tello) Land(ctx context.Context) error {
	_, err := t.exec(ctx, "land")
	return err
}

func (t *Tello) StreamOn(ctx context.Context) error {
	_, err := t.exec(ctx, "streamon")
	return err
}

func (t *Tello) StreamOff(ctx context.Context) error {
	_, err := t.exec(ctx, "streamoff")
	return err
}

// Battery возвращает заряд батареи в процентах.
func (t *Tello) Battery(ctx context.Context) (int, error) {
	reply, err := t.exec(ctx, "battery?")
	if err != nil {
		return 0, err
	}
	pct, err := strconv.Atoi(reply)
	if err != nil {
		return 0, fmt.Errorf("parse battery reply %q: %w", reply, err)
	}
	return pct, nil
}

// Close закрывает сокет.
func (t *Tello) Close() error {
	if t.conn == nil {
		return errors.New("tello is not connected")
	}
	return t.conn.Close()
}

var _ port.FlightController = (*Tello)(nil)
