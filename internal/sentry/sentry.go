package sentry

import (
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// dsn is empty unless injected at build time with
// -ldflags "-X github.com/kastheco/craftdeck/internal/sentry.dsn=...".
var dsn = ""

const flushTimeout = 2 * time.Second

var active atomic.Bool

// Options configures crash reporting for one process.
type Options struct {
	Version string
	// Enabled mirrors the telemetry switch in the user config.
	Enabled bool
}

// Init starts the sentry client. It returns nil without doing anything when
// reporting is switched off or no DSN was built in, and every other function
// in this package then does nothing.
func Init(opts Options) error {
	active.Store(false)
	if !opts.Enabled || dsn == "" {
		return nil
	}

	home, _ := os.UserHomeDir()
	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "craftdeck@" + opts.Version,
		Environment:      environment(opts.Version),
		AttachStacktrace: true,
		BeforeSend: func(event *gosentry.Event, _ *gosentry.EventHint) *gosentry.Event {
			return scrubEvent(event, home)
		},
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTags(map[string]string{
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
			"go_version": runtime.Version(),
		})
	})
	active.Store(true)
	return nil
}

// Active reports whether events are being sent.
func Active() bool {
	return active.Load()
}

// Flush waits for queued events to be delivered.
func Flush() {
	if active.Load() {
		gosentry.Flush(flushTimeout)
	}
}

// Recover reports a panic and re-raises it. Use as: defer sentry.Recover()
func Recover() {
	if !active.Load() {
		return
	}
	if r := recover(); r != nil {
		gosentry.CurrentHub().Recover(r)
		gosentry.Flush(flushTimeout)
		panic(r)
	}
}

// TagLauncher attaches the java command and library size to every later
// event.
func TagLauncher(javaCommand string, instances int) {
	if !active.Load() {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("java", javaCommand)
		scope.SetContext("launcher", gosentry.Context{
			"java":      javaCommand,
			"instances": instances,
		})
	})
}

// CaptureCommand reports an error returned by a CLI command.
func CaptureCommand(command string, err error) {
	if !active.Load() || err == nil {
		return
	}
	gosentry.WithScope(func(scope *gosentry.Scope) {
		scope.SetTag("command", command)
		gosentry.CaptureException(err)
	})
}

// environment is "dev" for prerelease versions.
func environment(version string) string {
	if version == "" || strings.Contains(version, "-") {
		return "dev"
	}
	return "release"
}

// scrubEvent replaces the user's home directory in messages so reports do not
// carry account names.
func scrubEvent(event *gosentry.Event, home string) *gosentry.Event {
	if event == nil || home == "" || home == "/" {
		return event
	}
	event.Message = strings.ReplaceAll(event.Message, home, "~")
	for i := range event.Exception {
		event.Exception[i].Value = strings.ReplaceAll(event.Exception[i].Value, home, "~")
	}
	for _, b := range event.Breadcrumbs {
		b.Message = strings.ReplaceAll(b.Message, home, "~")
	}
	return event
}
