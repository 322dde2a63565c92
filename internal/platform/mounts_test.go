package platform

import "testing"

func TestNoexecAt(t *testing.T) {
	t.Parallel()

	table := `overlay / overlay rw,relatime,noexec 0 0
/dev/sda2 /home ext4 rw,relatime 0 0
/dev/sda3 /home/dev/.cache ext4 rw,nosuid,noexec 0 0
tmpfs /mnt/build\040cache tmpfs rw,noexec 0 0
`
	tests := map[string]bool{
		"/tmp/jxfetch":                      true,
		"/home/other/.cache/jxfetch":        false,
		"/home/dev/.cache/jxfetch/jextract": true,
		"/home/dev/.cachex":                 false,
		"/mnt/build cache/jextract":         true,
		"relative/dir":                      false,
		"":                                  false,
	}
	for dir, want := range tests {
		if got := noexecAt(dir, table); got != want {
			t.Fatalf("noexecAt(%q) = %v want %v", dir, got, want)
		}
	}
}

func TestNoexecAtOrderIndependent(t *testing.T) {
	t.Parallel()

	// Deeper mounts may be listed before their parents.
	table := "tmpfs /tmp tmpfs rw,nosuid 0 0\n/dev/sda1 / ext4 rw,noexec 0 0\n"
	if noexecAt("/tmp/jxfetch", table) {
		t.Fatalf("expected /tmp to be exec")
	}
	if !noexecAt("/var/cache", table) {
		t.Fatalf("expected /var to inherit / noexec")
	}
}

func TestNoexecAtEmptyTable(t *testing.T) {
	t.Parallel()

	for _, table := range []string{"", "garbage", "a b c"} {
		if noexecAt("/tmp", table) {
			t.Fatalf("expected false for table %q", table)
		}
	}
}

func TestNoexecAtLastOvermountWins(t *testing.T) {
	t.Parallel()

	table := "/dev/sda1 / ext4 rw 0 0\ntmpfs /tmp tmpfs rw,noexec 0 0\ntmpfs /tmp tmpfs rw 0 0\n"
	if noexecAt("/tmp/jxfetch", table) {
		t.Fatalf("expected the later /tmp mount to win")
	}
}
