package macperms

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tmc/macperms/internal/system"
)

// Kind is a macOS privacy permission.
type Kind string

const (
	Accessibility   Kind = "accessibility"
	FullDiskAccess  Kind = "full-disk-access"
	ScreenRecording Kind = "screen-recording"
	Microphone      Kind = "microphone"
	Camera          Kind = "camera"
	InputMonitoring Kind = "input-monitoring"
)

// Kinds returns every Kind.
func Kinds() []Kind {
	return []Kind{Accessibility, FullDiskAccess, ScreenRecording, Microphone, Camera, InputMonitoring}
}

// ParseKind accepts "full-disk-access" as well as "full_disk_access".
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("macperms: unknown permission %q", s)
}

func (k Kind) String() string { return string(k) }

// Ident is k with underscores, as used in command names such as
// check_full_disk_access_permission.
func (k Kind) Ident() string { return strings.ReplaceAll(string(k), "-", "_") }

// Privacy & Security pane anchors.
const settingsBase = "x-apple.systempreferences:com.apple.preference.security"

var settingsAnchors = map[Kind]string{
	Accessibility:   "Privacy_Accessibility",
	FullDiskAccess:  "Privacy_AllFiles",
	ScreenRecording: "Privacy_ScreenCapture",
	Microphone:      "Privacy_Microphone",
	Camera:          "Privacy_Camera",
	InputMonitoring: "Privacy_ListenEvent",
}

// PhotosSettingsURL opens the Photos pane of Privacy & Security.
const PhotosSettingsURL = settingsBase + "?Privacy_Photos"

// SettingsURL returns the URL of the Privacy & Security pane for k.
func (k Kind) SettingsURL() string {
	if anchor, ok := settingsAnchors[k]; ok {
		return settingsBase + "?" + anchor
	}
	return settingsBase
}

// TCCService returns the tccutil service name for k.
func (k Kind) TCCService() string {
	switch k {
	case Accessibility:
		return "Accessibility"
	case FullDiskAccess:
		return "SystemPolicyAllFiles"
	case ScreenRecording:
		return "ScreenCapture"
	case Microphone:
		return "Microphone"
	case Camera:
		return "Camera"
	case InputMonitoring:
		return "ListenEvent"
	}
	return ""
}

// Check reports whether the process holds k. Unknown kinds report false.
func Check(k Kind) bool {
	if _, ok := settingsAnchors[k]; !ok {
		return false
	}
	return check(k)
}

// Request asks the system for k. Where macOS has no prompt for k, the
// matching settings pane is opened. Request returns once the prompt is
// shown; the user's answer is observed with Check.
func Request(k Kind) error {
	if _, ok := settingsAnchors[k]; !ok {
		return &Error{Op: "request", Kind: k, Err: errors.New("unknown permission")}
	}
	return request(k)
}

// OpenSettings opens the settings pane for k.
func OpenSettings(k Kind) error {
	return openPane(k, k.SettingsURL())
}

// OpenPhotosSettings opens the Photos pane of Privacy & Security.
func OpenPhotosSettings() error {
	return openPane("photos", PhotosSettingsURL)
}

func openPane(k Kind, url string) error {
	if err := openURL(url); err != nil {
		return &Error{
			Op:   "open settings",
			Kind: k,
			Err:  err,
			Help: fmt.Sprintf("open %s > Privacy & Security manually", settingsAppName()),
		}
	}
	return nil
}

// openURL is replaced in tests.
var openURL = func(url string) error {
	return exec.Command("open", url).Run()
}

// fullDiskAccessDirs are only listable with Full Disk Access.
var fullDiskAccessDirs = []string{
	filepath.Join("Library", "Containers", "com.apple.stocks"),
	filepath.Join("Library", "Safari"),
}

// hasFullDiskAccess tries to list directories under home that TCC protects.
func hasFullDiskAccess(home string) bool {
	for _, dir := range fullDiskAccessDirs {
		if _, err := os.ReadDir(filepath.Join(home, dir)); err == nil {
			return true
		}
	}
	return false
}

func settingsAppName() string {
	if v, err := system.CurrentMacOSVersion(); err == nil {
		return v.SettingsAppName()
	}
	return "System Settings"
}
