package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/3leaps/jxfetch/internal/model"
)

func TestDownloadURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version  string
		platform model.Platform
		want     string
	}{
		{"25-jextract+2-4", model.PlatformLinuxX64, "https://download.java.net/java/early_access/jextract/25/2/openjdk-25-jextract+2-4_linux-x64_bin.tar.gz"},
		{"25-jextract+2-4", model.PlatformMacOSAArch64, "https://download.java.net/java/early_access/jextract/25/2/openjdk-25-jextract+2-4_macos-aarch64_bin.tar.gz"},
		{"26-jextract+5-1", model.PlatformWindowsX64, "https://download.java.net/java/early_access/jextract/26/5/openjdk-26-jextract+5-1_windows-x64_bin.tar.gz"},
		{"22-jextract+5", model.PlatformLinuxAArch64, "https://download.java.net/java/early_access/jextract/22/5/openjdk-22-jextract+5_linux-aarch64_bin.tar.gz"},
	}

	for _, tc := range tests {
		t.Run(tc.version+"_"+string(tc.platform), func(t *testing.T) {
			t.Parallel()
			got, err := DownloadURL(tc.version, tc.platform)
			if err != nil {
				t.Fatalf("DownloadURL: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestDownloadURLRejectsInvalidVersion(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "invalid-version", "25-jextract", "jextract+2-4", "25.0.1"} {
		if _, err := DownloadURL(v, model.PlatformLinuxX64); err == nil {
			t.Fatalf("expected error for %q", v)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         model.Platform
		wantErr      bool
	}{
		{goos: "linux", goarch: "amd64", want: model.PlatformLinuxX64},
		{goos: "linux", goarch: "arm64", want: model.PlatformLinuxAArch64},
		{goos: "darwin", goarch: "amd64", want: model.PlatformMacOSX64},
		{goos: "darwin", goarch: "arm64", want: model.PlatformMacOSAArch64},
		{goos: "windows", goarch: "amd64", want: model.PlatformWindowsX64},
		{goos: "linux", goarch: "riscv64", wantErr: true},
		{goos: "freebsd", goarch: "amd64", wantErr: true},
	}

	for _, tc := range tests {
		got, err := detect(tc.goos, tc.goarch)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("%s/%s: expected ErrUnsupported, got %v", tc.goos, tc.goarch, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s/%s: got %q, %v want %q", tc.goos, tc.goarch, got, err, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, p := range model.Platforms {
		got, err := Parse(string(p))
		if err != nil || got != p {
			t.Fatalf("Parse(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := Parse("solaris-sparc"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestCacheDirName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"25-jextract+2-4": "25-jextract_2-4",
		"22-jextract+5":   "22-jextract_5",
		"a/b\\c d":        "a_b_c_d",
		"1.2.3-rc.1":      "1.2.3-rc.1",
	}
	for in, want := range tests {
		if got := CacheDirName(in); got != want {
			t.Fatalf("CacheDirName(%q) = %q want %q", in, got, want)
		}
	}
}

func TestFindExecutable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	toolDir := ToolDir(root, "25-jextract+2-4")
	if filepath.Base(toolDir) != "25-jextract_2-4" {
		t.Fatalf("tool dir: got %q", toolDir)
	}

	if _, ok := FindExecutable(toolDir, model.PlatformLinuxX64); ok {
		t.Fatalf("expected no executable in missing dir")
	}

	nested := filepath.Join(toolDir, "jextract-25", "bin")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "jextract"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := FindExecutable(toolDir, model.PlatformLinuxX64)
	if !ok || got != filepath.Join(nested, "jextract") {
		t.Fatalf("nested lookup: got %q, %v", got, ok)
	}
	if _, ok := FindExecutable(toolDir, model.PlatformWindowsX64); ok {
		t.Fatalf("expected jextract.bat to be absent")
	}

	direct := filepath.Join(toolDir, "bin")
	if err := os.MkdirAll(direct, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(direct, "jextract.bat"), []byte("@echo off\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok = FindExecutable(toolDir, model.PlatformWindowsX64)
	if !ok || got != filepath.Join(direct, "jextract.bat") {
		t.Fatalf("direct lookup: got %q, %v", got, ok)
	}
}
