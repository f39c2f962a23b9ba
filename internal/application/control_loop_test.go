package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solarsky/internal/domain/entity"
	"solarsky/internal/infrastructure/storage"
)

type loopFixture struct {
	source     *fakeSource
	flight     *fakeFlight
	motion     *fakeMotion
	input      *scriptedInput
	renderer   *fakeRenderer
	detector   *fakeDetector
	recognizer *fakeRecognizer
	store      *storage.MemoryStore
	ledger     *SerialLedger
	loop       *ControlLoop
}

func newLoopFixture(t *testing.T, script map[int]entity.OperatorCommand) *loopFixture {
	t.Helper()
	f := &loopFixture{
		source:     &fakeSource{},
		flight:     &fakeFlight{},
		motion:     &fakeMotion{},
		input:      &scriptedInput{script: script},
		renderer:   &fakeRenderer{},
		detector:   &fakeDetector{},
		recognizer: &fakeRecognizer{},
		store:      seedFarm(t),
	}
	f.ledger, _ = newTestLedger(t)

	scanner := NewFrameScanner(f.detector, f.recognizer, f.ledger, f.renderer, nil, nil, nil, "")
	sessions := NewInspectionSessionManager(f.store, f.ledger, nil, nil, nil, nil, "")
	f.loop = NewControlLoop(LoopDeps{
		Source:   f.source,
		Flight:   f.flight,
		Motion:   f.motion,
		Input:    f.input,
		Renderer: f.renderer,
		Throttle: NewThrottle(5),
		Scanner:  scanner,
		Sessions: sessions,
	})
	return f
}

func TestControlLoop_QuitStopsAndReleases(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{12: entity.CommandQuit})

	require.NoError(t, f.loop.Run(context.Background()))

	require.Len(t, f.source.frames, 12)
	for _, fr := range f.source.frames {
		require.True(t, fr.closed)
	}
	require.True(t, f.source.closed)
	require.True(t, f.renderer.closed)
	require.Equal(t, 1, f.flight.streamOff)
	require.Zero(t, f.flight.lands, "drone never took off")
	require.Len(t, f.input.waits, 12)
	require.Equal(t, DefaultCommandWait, f.input.waits[0])
}

func TestControlLoop_QuitInFlightLandsBeforeStreamOff(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{3: entity.CommandQuit})
	f.motion.cmds = []entity.MotionCommand{{Takeoff: true}, {ForwardBack: 50}}

	require.NoError(t, f.loop.Run(context.Background()))
	require.Equal(t, []string{"takeoff", "land", "streamoff"}, f.flight.calls)
}

func TestControlLoop_QuitAfterManualLandDoesNotLandTwice(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{3: entity.CommandQuit})
	f.motion.cmds = []entity.MotionCommand{{Takeoff: true}, {Land: true}}

	require.NoError(t, f.loop.Run(context.Background()))
	require.Equal(t, []string{"takeoff", "land", "streamoff"}, f.flight.calls)
}

func TestControlLoop_FatalErrorInFlightLands(t *testing.T) {
	f := newLoopFixture(t, nil)
	f.motion.cmds = []entity.MotionCommand{{Takeoff: true}}
	f.detector.err = errBoom

	err := f.loop.Run(context.Background())
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, []string{"takeoff", "land", "streamoff"}, f.flight.calls)
}

func TestControlLoop_MotionEveryTickDetectionThrottled(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{20: entity.CommandQuit})
	f.motion.cmds = []entity.MotionCommand{{Takeoff: true}, {ForwardBack: 50}}

	require.NoError(t, f.loop.Run(context.Background()))

	require.Len(t, f.flight.rc, 20)
	require.Equal(t, 50, f.flight.rc[1].ForwardBack)
	require.Equal(t, 1, f.flight.takeoffs)
	require.Equal(t, []int64{5, 10, 15, 20}, f.detector.calls)
	require.Equal(t, 20, f.renderer.shown)
}

func TestControlLoop_LandReconcilesAndContinues(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{
		5: entity.CommandLand,
		7: entity.CommandQuit,
	})
	f.detector.byFrame = map[int64][]entity.Detection{
		5: {{Class: entity.DefectCracks, Confidence: 0.88}},
	}
	f.recognizer.spans = []entity.TextSpan{{Text: "SN002", Confidence: 0.97}}

	require.NoError(t, f.loop.Run(context.Background()))

	require.Len(t, f.source.frames, 7)
	require.Equal(t, map[string]bool{"SN001": true, "SN002": false, "SN003": true}, panelStatuses(f.store, "inspector", "farm-1"))
	user, _ := f.store.User("inspector")
	require.False(t, user.StartInspectionTimer)
}

func TestControlLoop_LandWithoutInspectorKeepsLooping(t *testing.T) {
	f := newLoopFixture(t, map[int]entity.OperatorCommand{
		1: entity.CommandLand,
		2: entity.CommandLand,
		3: entity.CommandQuit,
	})
	require.NoError(t, f.store.SetUserInspectionTimer(context.Background(), "inspector", false))

	require.NoError(t, f.loop.Run(context.Background()))
	require.Len(t, f.source.frames, 3)
}

func TestControlLoop_FrameErrorIsFatalButReleases(t *testing.T) {
	f := newLoopFixture(t, nil)
	f.source.err = errBoom

	err := f.loop.Run(context.Background())
	require.ErrorIs(t, err, errBoom)
	require.True(t, f.source.closed)
	require.Equal(t, 1, f.flight.streamOff)
}

func TestControlLoop_CancelledContextActsAsQuit(t *testing.T) {
	f := newLoopFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.loop.Run(ctx))
	require.Len(t, f.source.frames, 1)
	require.True(t, f.renderer.closed)
}
