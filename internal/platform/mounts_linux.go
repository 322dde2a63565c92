//go:build linux

package platform

import "os"

// NoExec reports whether binaries unpacked under dir could not be executed
// because the filesystem is mounted noexec. An unreadable mount table reports false.
func NoExec(dir string) bool {
	data, err := os.ReadFile("/proc/self/mounts") // #nosec G304 -- fixed procfs path
	if err != nil {
		return false
	}
	return noexecAt(dir, string(data))
}
