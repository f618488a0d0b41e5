// Package statsview serves live runtime charts (heap, goroutines, GC) for
// the emulator process. The server is only compiled in with the statsview
// build tag:
//
//	go build -tags statsview ./cmd/desktop
//
// Without the tag Launch does nothing and Available reports false.
package statsview
