//go:build !statsview

package statsview

import "io"

func Launch(_ io.Writer, _ string) {}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
