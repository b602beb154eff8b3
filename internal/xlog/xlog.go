// Package xlog is the engine's logging and diagnostic-formatting layer. It
// writes to stderr (stdout is reserved for the UCI protocol stream) and
// exits the process on invariant violations that leave search state
// untrustworthy.
package xlog

import (
	"os"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var log = logging.MustGetLogger("chesscore")

var printer = message.NewPrinter(language.English)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{message}`,
	)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
}

// SetDebug raises or lowers the logger's verbosity in response to the UCI
// "debug" setoption.
func SetDebug(on bool) {
	level := logging.INFO
	if on {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "")
}

func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { log.Infof(format, args...) }
func Warningf(format string, args ...interface{}) { log.Warningf(format, args...) }
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }

// Fatal logs a CRITICAL message and terminates the process. Reserved for
// invariants whose violation means search state can no longer be trusted
// (a corrupt transposition entry, a position with no king, and the like) --
// never for recoverable protocol-level input errors, which should be
// reported back over UCI instead.
func Fatal(format string, args ...interface{}) {
	log.Criticalf(format, args...)
	os.Exit(1)
}

// FormatNPS renders a nodes-per-second count with locale-aware thousands
// separators, for human-facing diagnostic output (never for the UCI "info"
// stream itself, which the protocol requires as a bare integer).
func FormatNPS(nps uint64) string {
	return printer.Sprintf("%d", nps)
}

// FormatNodes renders a node count the same way.
func FormatNodes(nodes uint64) string {
	return printer.Sprintf("%d", nodes)
}
