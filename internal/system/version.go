package system

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MacOSVersion represents a parsed macOS version
type MacOSVersion struct {
	Major int
	Minor int
	Patch int
	Raw   string
}

// String returns the version as a string
func (v MacOSVersion) String() string {
	if v.Patch > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor > 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d", v.Major)
}

// ReleaseName returns the marketing name for the macOS version
func (v MacOSVersion) ReleaseName() string {
	switch v.Major {
	case 26:
		return "Tahoe"
	case 15:
		return "Sequoia"
	case 14:
		return "Sonoma"
	case 13:
		return "Ventura"
	case 12:
		return "Monterey"
	case 11:
		return "Big Sur"
	case 10:
		if v.Minor >= 15 {
			return "Catalina"
		}
		return "Mojave or earlier"
	default:
		if v.Major > 26 {
			return "Future macOS"
		}
		return "Unknown"
	}
}

// IsAtLeast checks if this version is at least the specified version
func (v MacOSVersion) IsAtLeast(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// SettingsAppName returns "System Settings" on Ventura and later and
// "System Preferences" before.
func (v MacOSVersion) SettingsAppName() string {
	if v.IsAtLeast(13, 0, 0) {
		return "System Settings"
	}
	return "System Preferences"
}

var (
	versionOnce sync.Once
	version     MacOSVersion
	versionErr  error
)

// CurrentMacOSVersion returns the running macOS version. The lookup happens
// once per process.
func CurrentMacOSVersion() (MacOSVersion, error) {
	versionOnce.Do(func() {
		var raw string
		raw, versionErr = productVersion()
		if versionErr == nil {
			version, versionErr = ParseMacOSVersion(raw)
		}
	})
	return version, versionErr
}

// ParseMacOSVersion parses a version string like "14.2.1" or "15.0"
func ParseMacOSVersion(version string) (MacOSVersion, error) {
	result := MacOSVersion{Raw: version}

	parts := strings.Split(version, ".")

	// Parse major version
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return result, fmt.Errorf("invalid major version: %w", err)
	}
	result.Major = major

	// Parse minor version (optional)
	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return result, fmt.Errorf("invalid minor version: %w", err)
		}
		result.Minor = minor
	}

	// Parse patch version (optional)
	if len(parts) > 2 {
		patch, err := strconv.Atoi(parts[2])
		if err != nil {
			return result, fmt.Errorf("invalid patch version: %w", err)
		}
		result.Patch = patch
	}

	return result, nil
}
