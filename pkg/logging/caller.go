package logging

import (
	"runtime"
	"strings"
	"sync"
)

const maximumCallerDepth = 25

var (
	// qualified package name of this package, resolved on first use
	loggingPackage string

	callerInitOnce sync.Once
)

// getCaller returns the first stack frame outside of this package and the
// logrus package.  logrus resolves the caller itself, but only relative to
// its own package, so wrapping it in Logger methods breaks its detection.
func getCaller() *runtime.Frame {
	callerInitOnce.Do(func() {
		pcs := make([]uintptr, 2)
		runtime.Callers(0, pcs)
		loggingPackage = getPackageName(runtime.FuncForPC(pcs[1]).Name())
	})

	pcs := make([]uintptr, maximumCallerDepth)
	depth := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:depth])
	for f, again := frames.Next(); again; f, again = frames.Next() {
		pkg := getPackageName(f.Function)
		if pkg == loggingPackage || strings.Contains(pkg, "sirupsen/logrus") {
			continue
		}
		return &f //nolint:scopelint
	}
	return nil
}

// getPackageName strips the function name from a fully qualified function
// path, leaving the package path.
func getPackageName(f string) string {
	for {
		lastPeriod := strings.LastIndex(f, ".")
		lastSlash := strings.LastIndex(f, "/")
		if lastPeriod > lastSlash {
			f = f[:lastPeriod]
		} else {
			break
		}
	}
	return f
}
