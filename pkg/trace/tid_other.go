//go:build !linux

package trace

import "os"

// Thread ids are not portable; fall back to the process id.
func threadID() int {
	return os.Getpid()
}
