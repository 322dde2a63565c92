package platform

import (
	"path"
	"strings"
)

var octalEscapes = strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)

// noexecAt reports whether the deepest mount containing dir is mounted noexec.
// table is /proc/self/mounts content: source mountpoint fstype options dump pass.
func noexecAt(dir, table string) bool {
	dir = path.Clean(dir)
	if !strings.HasPrefix(dir, "/") {
		return false
	}

	deepest, noexec := -1, false
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		mp := path.Clean(octalEscapes.Replace(fields[1]))
		// Later entries over-mount earlier ones at the same point.
		if len(mp) < deepest || !within(dir, mp) {
			continue
		}
		deepest = len(mp)
		noexec = hasOption(fields[3], "noexec")
	}
	return noexec
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if o == want {
			return true
		}
	}
	return false
}

func within(dir, root string) bool {
	return root == "/" || dir == root || strings.HasPrefix(dir, root+"/")
}
