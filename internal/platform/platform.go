// Package platform maps hosts to jextract download platforms and derives the
// archive URL and cache layout for a pinned version.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/3leaps/jxfetch/internal/model"
)

const downloadURLTemplate = "https://download.java.net/java/early_access/jextract/%s/%s/openjdk-%s_%s_bin.tar.gz"

var (
	// Looser than the stored grammar: any suffix after the build number is
	// carried into the archive name untouched.
	downloadVersionRe = regexp.MustCompile(`^(\d+)-jextract\+(\d+)(?:-.*)?$`)
	unsafeDirRunes    = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// ErrUnsupported is returned for hosts without a published archive.
var ErrUnsupported = errors.New("unsupported platform")

// Current returns the platform of the running process.
func Current() (model.Platform, error) {
	return detect(runtime.GOOS, runtime.GOARCH)
}

func detect(goos, goarch string) (model.Platform, error) {
	arm := goarch == "arm64"
	switch goos {
	case "windows":
		return model.PlatformWindowsX64, nil
	case "darwin":
		if arm {
			return model.PlatformMacOSAArch64, nil
		}
		if goarch == "amd64" {
			return model.PlatformMacOSX64, nil
		}
	case "linux":
		if arm {
			return model.PlatformLinuxAArch64, nil
		}
		if goarch == "amd64" {
			return model.PlatformLinuxX64, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupported, goos, goarch)
}

// Parse validates a platform id such as "linux-x64".
func Parse(id string) (model.Platform, error) {
	for _, p := range model.Platforms {
		if string(p) == id {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, id)
}

// DownloadURL renders the archive URL of version for platform p.
func DownloadURL(version string, p model.Platform) (string, error) {
	m := downloadVersionRe.FindStringSubmatch(version)
	if m == nil {
		return "", fmt.Errorf("invalid jextract version format: %q", version)
	}
	return fmt.Sprintf(downloadURLTemplate, m[1], m[2], version, p), nil
}

// CacheDirName turns a version into a single safe path component.
func CacheDirName(version string) string {
	return unsafeDirRunes.ReplaceAllString(version, "_")
}

// ToolDir is where the archive of version is unpacked under cacheRoot.
func ToolDir(cacheRoot, version string) string {
	return filepath.Join(cacheRoot, CacheDirName(version))
}

// DefaultCacheRoot returns the per-user cache directory for unpacked tools.
func DefaultCacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "jxfetch", "jextract")
}

// ExecutableName is the launcher name shipped in the archive's bin directory.
func ExecutableName(p model.Platform) string {
	if p.Windows() {
		return "jextract.bat"
	}
	return "jextract"
}

// FindExecutable looks for bin/<launcher> directly under toolDir or one
// directory below it (archives unpack into a versioned top-level folder).
func FindExecutable(toolDir string, p model.Platform) (string, bool) {
	rel := filepath.Join("bin", ExecutableName(p))

	direct := filepath.Join(toolDir, rel)
	if isFile(direct) {
		return direct, true
	}

	entries, err := os.ReadDir(toolDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		nested := filepath.Join(toolDir, e.Name(), rel)
		if isFile(nested) {
			return nested, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
