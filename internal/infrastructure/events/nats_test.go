package events

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solarsky/internal/domain/entity"
)

type published struct {
	subject string
	payload []byte
}

// fakeNATS минимальный сервер протокола NATS: INFO, PING/PONG и приём PUB
type fakeNATS struct {
	ln  net.Listener
	pub chan published
}

func startFakeNATS(t *testing.T) *fakeNATS {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeNATS{ln: ln, pub: make(chan published, 16)}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *fakeNATS) url() string {
	return "nats://" + s.ln.Addr().String()
}

func (s *fakeNATS) serve(conn net.Conn) {
	defer conn.Close()
	port := s.ln.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(conn, "INFO {\"server_id\":\"fake\",\"version\":\"2.10.0\",\"host\":\"127.0.0.1\",\"port\":%d,\"max_payload\":1048576,\"proto\":1}\r\n", port)

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "PING":
			_, _ = io.WriteString(conn, "PONG\r\n")
		case strings.HasPrefix(line, "PUB "):
			fields := strings.Fields(line)
			size, err := strconv.Atoi(fields[len(fields)-1])
			if err != nil {
				return
			}
			buf := make([]byte, size+2)
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
			s.pub <- published{subject: fields[1], payload: buf[:size]}
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNATSPublisher_Subject(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "solarsky.serial.recorded"},
		{"farm", "farm.serial.recorded"},
		{"farm.", "farm.serial.recorded"},
	}
	for _, tt := range tests {
		p := newNATSPublisher(nil, tt.prefix, nil)
		require.Equal(t, tt.want, p.Subject(entity.EventSerialRecorded))
	}
}

func TestNATSPublisher_PublishSendsEventJSON(t *testing.T) {
	srv := startFakeNATS(t)
	pub, err := NewNATSPublisher(srv.url(), "farm", discardLogger())
	require.NoError(t, err)
	defer pub.Close()

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	event := entity.Event{
		Type:       entity.EventSerialRecorded,
		RunID:      "run-7",
		At:         at,
		Serial:     "SN001",
		Confidence: 0.97,
	}
	require.NoError(t, pub.Publish(context.Background(), event))
	require.NoError(t, pub.conn.Flush())

	select {
	case got := <-srv.pub:
		require.Equal(t, "farm.serial.recorded", got.subject)
		var decoded entity.Event
		require.NoError(t, json.Unmarshal(got.payload, &decoded))
		require.Equal(t, event.Type, decoded.Type)
		require.Equal(t, "run-7", decoded.RunID)
		require.Equal(t, "SN001", decoded.Serial)
		require.InDelta(t, 0.97, decoded.Confidence, 1e-9)
		require.True(t, at.Equal(decoded.At))
		require.Nil(t, decoded.Report)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	srv := startFakeNATS(t)
	pub, err := NewNATSPublisher(srv.url(), "", discardLogger())
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, pub.Publish(ctx, entity.Event{Type: entity.EventSessionReconciled}), context.Canceled)
}
