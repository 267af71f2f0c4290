package internal

import (
	"fmt"
	"os"
	"sync/atomic"
)

// devMode gates the misuse warnings spec.md §7 class 2 describes: loud in
// development, silent in production. Defaults to true; the root package
// exposes reactivity.SetDevMode to flip it, and embedders doing a
// production build are expected to call that once at startup.
var devMode atomic.Bool

func init() { devMode.Store(true) }

func SetDevMode(on bool) { devMode.Store(on) }
func DevMode() bool      { return devMode.Load() }

// Warnf logs a misuse warning to stderr when DevMode is on. Never
// returns an error and never panics: misuse warnings are advisory,
// spec.md §7 class 2.
func Warnf(format string, args ...any) {
	if !devMode.Load() {
		return
	}
	fmt.Fprintf(os.Stderr, "[reactivity] "+format+"\n", args...)
}
