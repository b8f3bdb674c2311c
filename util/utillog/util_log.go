package utillog

import "fmt"

// Logging indirection for leaf packages that must not depend on the
// core logger. core package replaces these funcs on startup.
var (
	DebugLog func(pat string, args ...any) = func(pat string, args ...any) {}
	ErrorLog func(pat string, args ...any) = func(pat string, args ...any) {
		fmt.Printf("[Error] "+pat+"\n", args...)
	}
)
