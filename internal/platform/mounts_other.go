//go:build !linux

package platform

// NoExec always reports false outside Linux.
func NoExec(string) bool {
	return false
}
