// Package clihelp provides eelc's command-line ergonomics: a leveled
// logger, a driver-level error-exit helper, and usage/version printers.
// This is the third error channel §7 describes — target/version
// failures, missing input files, and config parse errors are reported
// here, never as a diag.Diagnostic or diag.InternalError, since they
// happen before any *symtab.SymbolTable exists.
//
// Patterned on internal/cli/common.go: same Logger shape
// (Verbose/DebugMode gated Info/Debug, unconditional Warn/Error),
// the same ExitWithError/PrintUsage idiom, adapted to eelc's one-binary
// CLI instead of a per-tool command registry.
package clihelp

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Version is eelc's own version, reported by -version.
const Version = "0.1.0"

// Logger is a leveled stderr logger; Info/Debug are gated behind their
// respective flags, Warn/Error always print.
type Logger struct {
	Verbose bool
	Debug   bool
}

func NewLogger(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, Debug: debug}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
}

// ExitWithError prints a driver-level fatal error (missing file,
// unresolved target, bad config) to stderr. It does not terminate the
// process itself: the caller returns exit code 2 — distinct from exit 1,
// which §6 reserves for "compilation completed but produced
// diagnostics" — so the driver stays testable without os.Exit.
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "eelc: "+format+"\n", args...)
}

// PrintVersion implements -version, optionally as JSON for -json
// -version (so scripting the driver never needs to scrape text).
func PrintVersion(jsonOutput bool) {
	if jsonOutput {
		fmt.Printf("{\"tool\":\"eelc\",\"version\":%q,\"go\":%q,\"platform\":%q}\n", Version, runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
		return
	}
	fmt.Printf("eelc v%s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// PrintUsage implements -help.
func PrintUsage() {
	fmt.Print(`eelc - EEL compiler

USAGE:
    eelc -file <path.eel> [OPTIONS]

OPTIONS:
    -f, --file <path>       source file to compile (required)
    -t, --target <spec>     target name, optionally @version-constraint (default: avr)
        --list-targets      print the supported target table and exit
        --test              register the test helper library (assert_true, fail, pass, ...)
        --watch             recompile on source change
        --config <path>     load persisted configuration
        --verbose           enable informational logging
        --debug             enable debug logging
        --json              emit diagnostics as JSON instead of rendered text
    -h, --help              show this message
    -v, --version           show version information

Output is written next to the input file as {input}.cc.
`)
}
