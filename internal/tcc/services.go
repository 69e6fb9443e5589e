// Package tcc inspects and resets macOS privacy (TCC) decisions. It is a
// development aid: the database is only readable with Full Disk Access and
// resets go through tccutil.
package tcc

import (
	"strings"
)

// Service is a TCC service known to macperms.
type Service struct {
	Name        string `json:"name"`  // e.g. kTCCServicePhotos
	Short       string `json:"short"` // the name tccutil accepts, e.g. Photos
	Description string `json:"description"`
}

var services = []Service{
	{"kTCCServicePhotos", "Photos", "Photos library access"},
	{"kTCCServicePhotosAdd", "PhotosAdd", "Add to Photos library"},
	{"kTCCServiceCamera", "Camera", "Camera access"},
	{"kTCCServiceMicrophone", "Microphone", "Microphone access"},
	{"kTCCServiceScreenCapture", "ScreenCapture", "Screen recording"},
	{"kTCCServiceAccessibility", "Accessibility", "Accessibility features"},
	{"kTCCServiceListenEvent", "ListenEvent", "Input monitoring"},
	{"kTCCServicePostEvent", "PostEvent", "Post events to other apps"},
	{"kTCCServiceSystemPolicyAllFiles", "SystemPolicyAllFiles", "Full Disk Access"},
	{"kTCCServiceAppleEvents", "AppleEvents", "Apple Events (automation)"},
}

// KnownServices returns the services macperms can describe and reset.
func KnownServices() []Service {
	return append([]Service(nil), services...)
}

// LookupService finds a service by full or short name, ignoring case.
func LookupService(name string) (Service, bool) {
	for _, s := range services {
		if strings.EqualFold(s.Name, name) || strings.EqualFold(s.Short, name) {
			return s, true
		}
	}
	return Service{}, false
}

// Describe returns a human-readable description of a TCC service name.
// Unknown names are split at capitals, so kTCCServiceSystemPolicyDesktopFolder
// becomes "Desktop Folder".
func Describe(service string) string {
	if s, ok := LookupService(service); ok {
		return s.Description
	}
	service = strings.TrimPrefix(service, "kTCCService")
	service = strings.TrimPrefix(service, "SystemPolicy")
	var result strings.Builder
	for i, r := range service {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
