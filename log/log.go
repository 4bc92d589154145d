package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/kastheco/craftdeck/internal/sentry"
)

var (
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
)

var logFileName = filepath.Join(os.TempDir(), "craftdeck.log")

var (
	globalLogFile *os.File
	mu            sync.Mutex
)

// Initialize should be called once at the beginning of the program to set up
// logging. Output goes to a file in the temp dir so it never corrupts the TUI.
// When headless is true the loggers also write to stderr. Passing telemetry
// as true routes every line through the sentry writer.
func Initialize(headless bool, telemetry ...bool) {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		panic(fmt.Sprintf("could not open log file: %s", err))
	}

	var out io.Writer = f
	if headless {
		out = io.MultiWriter(f, os.Stderr)
	}

	withSentry := len(telemetry) > 0 && telemetry[0]
	wrap := func(level sentry.Level) io.Writer {
		if !withSentry {
			return out
		}
		return sentry.NewWriter(out, level)
	}

	// Set log format to include timestamp and file/line number
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	InfoLog = log.New(wrap(sentry.LevelInfo), "INFO:", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(wrap(sentry.LevelWarning), "WARNING:", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(wrap(sentry.LevelError), "ERROR:", log.Ldate|log.Ltime|log.Lshortfile)

	globalLogFile = f
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
	fmt.Println("wrote logs to " + logFileName)
}

// Path returns the location of the log file.
func Path() string {
	return logFileName
}
