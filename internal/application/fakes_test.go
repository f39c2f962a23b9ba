package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solarsky/internal/domain/entity"
	"solarsky/internal/infrastructure/storage"
)

type fakeFrame struct {
	seq    int64
	closed bool
}

func (f *fakeFrame) Seq() int64   { return f.seq }
func (f *fakeFrame) Close() error { f.closed = true; return nil }

type fakeSource struct {
	next   int64
	frames []*fakeFrame
	closed bool
	err    error
}

func (s *fakeSource) NextFrame(ctx context.Context) (entity.Frame, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.next++
	f := &fakeFrame{seq: s.next}
	s.frames = append(s.frames, f)
	return f, nil
}

func (s *fakeSource) Close() error { s.closed = true; return nil }

// fakeDetector отдаёт детекции по номеру кадра
type fakeDetector struct {
	byFrame map[int64][]entity.Detection
	all     []entity.Detection
	calls   []int64
	err     error
}

func (d *fakeDetector) Score(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	d.calls = append(d.calls, frame.Seq())
	if d.err != nil {
		return nil, d.err
	}
	if d.byFrame != nil {
		return d.byFrame[frame.Seq()], nil
	}
	return d.all, nil
}

type fakeRecognizer struct {
	spans []entity.TextSpan
	calls int
	err   error
}

func (r *fakeRecognizer) Read(ctx context.Context, frame entity.Frame) ([]entity.TextSpan, error) {
	r.calls++
	return r.spans, r.err
}

type fakeRenderer struct {
	detections []string
	serials    []string
	shown      int
	closed     bool
}

func (r *fakeRenderer) DrawDetection(frame entity.Frame, d entity.Detection) {
	r.detections = append(r.detections, d.Label())
}
func (r *fakeRenderer) DrawSerial(frame entity.Frame, span entity.TextSpan) {
	r.serials = append(r.serials, span.Text)
}
func (r *fakeRenderer) Show(frame entity.Frame) error { r.shown++; return nil }
func (r *fakeRenderer) Close() error                  { r.closed = true; return nil }

type fakeFlight struct {
	rc        []entity.MotionCommand
	takeoffs  int
	lands     int
	streamOff int
	calls     []string
}

func (f *fakeFlight) SendRC(ctx context.Context, cmd entity.MotionCommand) error {
	f.rc = append(f.rc, cmd)
	return nil
}
func (f *fakeFlight) Takeoff(ctx context.Context) error {
	f.takeoffs++
	f.calls = append(f.calls, "takeoff")
	return nil
}
func (f *fakeFlight) Land(ctx context.Context) error {
	f.lands++
	f.calls = append(f.calls, "land")
	return nil
}
func (f *fakeFlight) StreamOn(ctx context.Context) error { return nil }
func (f *fakeFlight) StreamOff(ctx context.Context) error {
	f.streamOff++
	f.calls = append(f.calls, "streamoff")
	return nil
}
func (f *fakeFlight) Battery(ctx context.Context) (int, error) {
	return 100, nil
}

type fakeMotion struct {
	cmds []entity.MotionCommand
	i    int
}

func (m *fakeMotion) CurrentCommand() entity.MotionCommand {
	if m.i >= len(m.cmds) {
		return entity.MotionCommand{}
	}
	c := m.cmds[m.i]
	m.i++
	return c
}

// scriptedInput отдаёт команды по тикам, начиная с первого
type scriptedInput struct {
	script map[int]entity.OperatorCommand
	tick   int
	waits  []time.Duration
}

func (in *scriptedInput) Poll(ctx context.Context, wait time.Duration) (entity.OperatorCommand, error) {
	in.tick++
	in.waits = append(in.waits, wait)
	return in.script[in.tick], nil
}

type recordingPublisher struct {
	events []entity.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e entity.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) error {
	n.messages = append(n.messages, text)
	return nil
}

var errBoom = errors.New("boom")

// newTestLedger создаёт журнал на файле во временном каталоге
func newTestLedger(t *testing.T) (*SerialLedger, *storage.FileSerialLog) {
	t.Helper()
	log, err := storage.OpenFileSerialLog(filepath.Join(t.TempDir(), "serial_numbers.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	ledger := NewSerialLedger(log)
	require.NoError(t, ledger.Reset())
	return ledger, log
}
