package terminal_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/natb1/tabmux/internal/metrics"
	"github.com/natb1/tabmux/internal/terminal"
	"github.com/natb1/tabmux/internal/terminal/terminaltest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*terminal.Registry, *terminaltest.Spawner) {
	t.Helper()
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner, Shell: "/bin/sh"})
	t.Cleanup(reg.Close)
	return reg, spawner
}

// drain dispatches every queued event, as the control thread would
func drain(reg *terminal.Registry) {
	for {
		select {
		case ev := <-reg.Events():
			reg.Dispatch(ev)
		default:
			return
		}
	}
}

func ids(sessions []*terminal.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	first, err := reg.Create(terminal.CreateOptions{Cols: 80, Rows: 20})
	require.NoError(t, err)
	second, err := reg.Create(terminal.CreateOptions{Name: "build"})
	require.NoError(t, err)

	assert.Equal(t, "tab-1", first.ID)
	assert.Equal(t, "Tab 1", first.Name)
	assert.Equal(t, 80, first.Cols)
	assert.Equal(t, 20, first.Rows)
	assert.Equal(t, "tab-2", second.ID)
	assert.Equal(t, "build", second.Name)
	assert.Equal(t, terminal.DefaultCols, second.Cols)
	assert.Equal(t, terminal.DefaultRows, second.Rows)
	assert.Equal(t, []string{"tab-1", "tab-2"}, ids(reg.List()))

	opts := spawner.Handle("tab-1").Options()
	assert.Equal(t, "/bin/sh", opts.Shell)
	assert.Equal(t, 80, opts.Cols)
	assert.Equal(t, 20, opts.Rows)
}

func TestIDsNeverReused(t *testing.T) {
	reg, _ := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		s, err := reg.Create(terminal.CreateOptions{})
		require.NoError(t, err)
		assert.False(t, seen[s.ID], "id %s reused", s.ID)
		seen[s.ID] = true

		if i%2 == 0 {
			reg.Destroy(s.ID)
			assert.NotContains(t, ids(reg.List()), s.ID)
		}
	}

	reg.DestroyAll()
	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "tab-6", s.ID)
	assert.Equal(t, []string{"tab-6"}, ids(reg.List()))
}

func TestShellResolution(t *testing.T) {
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner})
	defer reg.Close()

	_, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)
	_, err = reg.Create(terminal.CreateOptions{Shell: "/bin/zsh"})
	require.NoError(t, err)

	spawned := spawner.Spawned()
	assert.Equal(t, terminal.DefaultShell(), spawned[0].Shell)
	assert.Equal(t, "/bin/zsh", spawned[1].Shell)
}

func TestSpawnFailureRegistersNothing(t *testing.T) {
	m := metrics.New()
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner, Metrics: m})
	defer reg.Close()

	spawner.Fail = errors.New("no such file or directory")
	_, err := reg.Create(terminal.CreateOptions{Shell: "/missing/shell"})

	var spawnErr *terminal.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "/missing/shell", spawnErr.Shell)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpawnFailures))

	spawner.Fail = nil
	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "tab-2", s.ID, "failed spawn consumes its sequence number")
}

func TestGetAndOutputUnknownSession(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Get("tab-9")
	assert.ErrorIs(t, err, terminal.ErrUnknownSession)

	_, err = reg.Output("tab-9")
	assert.ErrorIs(t, err, terminal.ErrUnknownSession)
}

func TestWriteAndResizeUnknownSessionAreNoops(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	s, err := reg.Create(terminal.CreateOptions{Cols: 80, Rows: 24})
	require.NoError(t, err)

	reg.Write("tab-42", []byte("rm -rf /\r"))
	reg.Resize("tab-42", 10, 10)
	reg.Destroy("tab-42")

	h := spawner.Handle(s.ID)
	assert.Empty(t, h.Written())
	assert.Empty(t, h.Resizes())
	assert.Equal(t, 80, s.Cols)
	assert.Equal(t, 1, reg.Len())
}

func TestWriteAndResizeForwardToHandle(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	s, err := reg.Create(terminal.CreateOptions{Cols: 80, Rows: 24})
	require.NoError(t, err)

	reg.Write(s.ID, []byte("echo hi\r"))
	reg.Resize(s.ID, 120, 40)
	reg.Resize(s.ID, 120, 40)
	reg.Resize(s.ID, 0, 40)

	h := spawner.Handle(s.ID)
	assert.Equal(t, "echo hi\r", h.Written())
	assert.Equal(t, []terminaltest.Size{{Cols: 120, Rows: 40}}, h.Resizes())
	assert.Equal(t, 120, s.Cols)
	assert.Equal(t, 40, s.Rows)
}

func TestDispatchAppendsAndPublishesChunk(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	var chunks []string
	reg.Bus().OnData(func(ev terminal.DataEvent) {
		chunks = append(chunks, string(ev.Data))
	})

	h := spawner.Handle(s.ID)
	h.Emit("$ echo hi\r\n")
	h.Emit("hi\r\n")
	drain(reg)

	assert.Equal(t, []string{"$ echo hi\r\n", "hi\r\n"}, chunks)
	assert.Equal(t, "$ echo hi\r\nhi\r\n", s.OutputString())

	out, err := reg.Output(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("$ echo hi\r\nhi\r\n"), out)
}

func TestDispatchExitAppendsNotice(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	var exits []terminal.ExitEvent
	reg.Bus().OnExit(func(ev terminal.ExitEvent) { exits = append(exits, ev) })

	h := spawner.Handle(s.ID)
	h.Exit(127, 0)
	drain(reg)

	assert.True(t, s.Exited())
	code, signal := s.ExitStatus()
	assert.Equal(t, 127, code)
	assert.Equal(t, 0, signal)
	assert.Contains(t, s.OutputString(), "[process exited with code 127]")
	assert.Len(t, exits, 1)
	assert.Equal(t, 1, reg.Len(), "an exited session stays open")

	h.Emit("ignored")
	reg.Write(s.ID, []byte("ignored"))
	assert.Empty(t, h.Written())
}

func TestDispatchDropsEventsForDestroyedSession(t *testing.T) {
	m := metrics.New()
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner, Metrics: m})
	defer reg.Close()

	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	var seen int
	reg.Bus().Subscribe(func(terminal.Event) { seen++ })

	h := spawner.Handle(s.ID)
	h.Emit("late output")
	reg.Destroy(s.ID)
	h.Exit(-1, 9)
	drain(reg)

	assert.Equal(t, 0, seen)
	assert.Equal(t, 1, h.Kills())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedEvents))
}

func TestDispatchHandleError(t *testing.T) {
	m := metrics.New()
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner, Metrics: m})
	defer reg.Close()

	first, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)
	second, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	var errs []terminal.ErrorEvent
	reg.Bus().OnError(func(ev terminal.ErrorEvent) { errs = append(errs, ev) })

	spawner.Handle(first.ID).Fail("resize", errors.New("bad file descriptor"))
	spawner.Handle(second.ID).Emit("still fine")
	drain(reg)

	require.Len(t, errs, 1)
	assert.Equal(t, "resize", errs[0].Op)
	assert.Empty(t, first.OutputString(), "errors are not appended to the buffer")
	assert.Equal(t, "still fine", second.OutputString())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandleErrors.WithLabelValues("resize")))
}

func TestBufferPolicyThroughRegistry(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	s, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	var delivered int
	reg.Bus().OnData(func(ev terminal.DataEvent) { delivered = len(ev.Data) })

	payload := strings.Repeat("0123456789", 6_000)
	spawner.Handle(s.ID).Emit(payload)
	drain(reg)

	assert.Equal(t, 60_000, delivered, "subscribers get the chunk, not the buffer")
	assert.Equal(t, terminal.DefaultBufferFloor, len(s.Output()))
	assert.Equal(t, payload[len(payload)-terminal.DefaultBufferFloor:], s.OutputString())
}

func TestDestroyAllKillsEverySession(t *testing.T) {
	reg, spawner := newTestRegistry(t)

	for i := 0; i < 3; i++ {
		_, err := reg.Create(terminal.CreateOptions{})
		require.NoError(t, err)
	}

	reg.DestroyAll()
	reg.DestroyAll()

	assert.Equal(t, 0, reg.Len())
	for _, id := range []string{"tab-1", "tab-2", "tab-3"} {
		assert.Equal(t, 1, spawner.Handle(id).Kills(), id)
	}
}

func TestCloseRejectsCreate(t *testing.T) {
	spawner := terminaltest.NewSpawner()
	reg := terminal.NewRegistry(terminal.Options{Spawner: spawner})

	_, err := reg.Create(terminal.CreateOptions{})
	require.NoError(t, err)

	reg.Close()
	reg.Close()

	select {
	case <-reg.Done():
	default:
		t.Fatal("registry not done after Close")
	}

	_, err = reg.Create(terminal.CreateOptions{})
	assert.ErrorIs(t, err, terminal.ErrRegistryClosed)
	assert.Equal(t, 1, spawner.Handle("tab-1").Kills())
}

func TestSnapshot(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Create(terminal.CreateOptions{Name: "Shell 1", Cols: 100, Rows: 30})
	require.NoError(t, err)

	infos := reg.Snapshot()
	require.Len(t, infos, 1)
	assert.Equal(t, "tab-1", infos[0].ID)
	assert.Equal(t, "Shell 1", infos[0].Name)
	assert.Equal(t, 100, infos[0].Cols)
	assert.NotZero(t, infos[0].Pid)
	assert.False(t, infos[0].Exited)
}
