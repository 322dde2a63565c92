package model

import "time"

// Platform is a download platform id as published on the early access page.
type Platform string

const (
	PlatformWindowsX64   Platform = "windows-x64"
	PlatformLinuxX64     Platform = "linux-x64"
	PlatformLinuxAArch64 Platform = "linux-aarch64"
	PlatformMacOSX64     Platform = "macos-x64"
	PlatformMacOSAArch64 Platform = "macos-aarch64"
)

// Platforms lists every platform with a published archive.
var Platforms = []Platform{
	PlatformWindowsX64,
	PlatformLinuxX64,
	PlatformLinuxAArch64,
	PlatformMacOSX64,
	PlatformMacOSAArch64,
}

// Windows reports whether the platform ships jextract.bat instead of jextract.
func (p Platform) Windows() bool {
	return p == PlatformWindowsX64
}

// Settings is the resolved configuration for one jxfetch invocation.
// Schema: internal/config/config.schema.json
type Settings struct {
	ListingURL     string
	MinisignKey    string // public key file; empty disables listing verification
	Major          int
	StorePath      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string // empty uses the built-in jxfetch/<version> agent
	JournalPath    string // empty disables the decision journal
	CacheDir       string
	GenerateOutput string
	GeneratePkg    string
	LogLevel       string
}
