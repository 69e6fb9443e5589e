//go:build !darwin

package photokit

import "log/slog"

// There is no photo library authority off macOS. A nil bridge selects the
// Manager's unsupported-platform responses.
func newPlatformBridge(*slog.Logger, DecisionFunc) Bridge {
	return nil
}
