package sentry

import (
	"errors"
	"testing"

	gosentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestInit_OffIsNoop(t *testing.T) {
	for _, opts := range []Options{
		{Version: "1.0.0", Enabled: false},
		{Version: "1.0.0", Enabled: true}, // no DSN built in
	} {
		assert.NoError(t, Init(opts))
		assert.False(t, Active())
	}

	// all of these must be safe while inactive
	Flush()
	TagLauncher("java", 2)
	CaptureCommand("install", errors.New("boom"))
}

func TestRecover_InactiveDoesNotSwallow(t *testing.T) {
	active.Store(false)
	assert.PanicsWithValue(t, "boom", func() {
		defer Recover()
		panic("boom")
	})
}

func TestEnvironment(t *testing.T) {
	assert.Equal(t, "release", environment("0.1.0"))
	assert.Equal(t, "dev", environment("0.2.0-rc1"))
	assert.Equal(t, "dev", environment(""))
}

func TestScrubEvent_ReplacesHome(t *testing.T) {
	event := &gosentry.Event{
		Message:     "failed to read /home/steve/.local/share/craftdeck/instances/a/mods",
		Exception:   []gosentry.Exception{{Value: "open /home/steve/x.jar: no such file"}},
		Breadcrumbs: []*gosentry.Breadcrumb{{Message: "java at /home/steve/jdk/bin/java"}},
	}

	out := scrubEvent(event, "/home/steve")
	assert.Equal(t, "failed to read ~/.local/share/craftdeck/instances/a/mods", out.Message)
	assert.Equal(t, "open ~/x.jar: no such file", out.Exception[0].Value)
	assert.Equal(t, "java at ~/jdk/bin/java", out.Breadcrumbs[0].Message)

	// a root home would mangle every path
	event = &gosentry.Event{Message: "/opt/java"}
	assert.Equal(t, "/opt/java", scrubEvent(event, "/").Message)
	assert.Nil(t, scrubEvent(nil, "/home/steve"))
}
