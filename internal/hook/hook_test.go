package hook

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pioEvent(root string) Event {
	buildDir := filepath.Join(root, ".pio", "build", "esp32")
	return Event{
		ProjectDir: root,
		BuildDir:   buildDir,
		Targets:    []string{filepath.Join(buildDir, "firmware.bin")},
		Env:        map[string]string{VarProgName: "firmware"},
	}
}

func TestExpandTarget(t *testing.T) {
	ev := pioEvent("/repo")

	assert.Equal(t, "/repo/.pio/build/esp32/firmware.bin", ExpandTarget("$BUILD_DIR/${PROGNAME}.bin", ev))
	assert.Equal(t, "/repo/build", ExpandTarget("${PROJECT_DIR}/build", ev))
	assert.Equal(t, "/.bin", ExpandTarget("$UNSET/${ALSO_UNSET}.bin", ev))
}

func TestTable_FireMatchesExpandedTarget(t *testing.T) {
	table := NewTable(nil)
	var got []Event
	table.AddPostAction("$BUILD_DIR/${PROGNAME}.bin", func(ev Event) { got = append(got, ev) })
	table.AddPostAction("$BUILD_DIR/${PROGNAME}.elf", func(Event) { t.Fatal("elf action must not run") })

	ev := pioEvent("/repo")
	ran := table.Fire(ev)

	assert.Equal(t, 1, ran)
	require.Len(t, got, 1)
	assert.Equal(t, "/repo/.pio/build/esp32/firmware.bin", got[0].Target())
	assert.Equal(t, 2, table.Len())
}

func TestTable_FireRunsInRegistrationOrder(t *testing.T) {
	table := NewTable(nil)
	var order []int
	for i := range 3 {
		table.AddPostAction("$BUILD_DIR/${PROGNAME}.bin", func(Event) { order = append(order, i) })
	}

	assert.Equal(t, 3, table.Fire(pioEvent("/repo")))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestTable_PanickingActionIsContained(t *testing.T) {
	var logs bytes.Buffer
	table := NewTable(slog.New(slog.NewTextHandler(&logs, nil)))
	after := false
	table.AddPostAction("$BUILD_DIR/${PROGNAME}.bin", func(Event) { panic("boom") })
	table.AddPostAction("$BUILD_DIR/${PROGNAME}.bin", func(Event) { after = true })

	assert.NotPanics(t, func() { table.Fire(pioEvent("/repo")) })
	assert.True(t, after)
	assert.Contains(t, logs.String(), "Post action panicked")
	assert.Contains(t, logs.String(), "boom")
}

func TestTable_NoTargets(t *testing.T) {
	table := NewTable(nil)
	table.AddPostAction("$BUILD_DIR/${PROGNAME}.bin", func(Event) { t.Fatal("must not run") })

	assert.Equal(t, 0, table.Fire(Event{ProjectDir: "/repo"}))
	assert.Equal(t, "", Event{}.Target())
}
