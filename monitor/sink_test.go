package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] wifi radio turned on\n$`)

func testEvent() Event {
	return Event{
		Kind:    KindRadioOn,
		Time:    time.Now(),
		Details: "wifi radio turned on",
		Current: Snapshot{RadioOn: true},
	}
}

func TestConsoleSinkFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := ConsoleSink{W: &buf}

	require.NoError(t, sink.Emit(context.Background(), testEvent()))
	assert.Regexp(t, lineRe, buf.String())
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Emit(context.Background(), testEvent()))
	require.NoError(t, sink.Emit(context.Background(), testEvent()))
	require.NoError(t, sink.Close())

	// Reopening must append, not truncate.
	sink, err = NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Emit(context.Background(), testEvent()))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	assert.Len(t, lines, 3)
	assert.Regexp(t, lineRe, string(lines[0])+"\n")
}

func TestHookSinkReceivesJSONOnStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	sink := HookSink{Command: "cat > " + path}

	require.NoError(t, sink.Emit(context.Background(), testEvent()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "radio-on", payload["type"])
	assert.Contains(t, payload, "previous_state")
	assert.Contains(t, payload, "current_state")
}

func TestHookSinkSkipsStartupEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	sink := HookSink{Command: "cat > " + path}

	e := Event{
		Kind:    KindMonitoringStarted,
		Time:    time.Now(),
		Details: "monitoring started",
		Current: Snapshot{RadioOn: true},
	}
	require.NoError(t, sink.Emit(context.Background(), e))

	// The hook command must not have run at all.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestHookSinkNonZeroExitIsNotFatal(t *testing.T) {
	sink := HookSink{Command: "exit 3"}
	assert.NoError(t, sink.Emit(context.Background(), testEvent()))
}

func TestHookSinkTimeoutKillsProcess(t *testing.T) {
	sink := HookSink{Command: "sleep 10", Timeout: 50 * time.Millisecond}

	start := time.Now()
	err := sink.Emit(context.Background(), testEvent())
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
