//go:build darwin

package system

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// productVersion reads kern.osproductversion, falling back to sw_vers on
// kernels that predate the sysctl.
func productVersion() (string, error) {
	if v, err := unix.Sysctl("kern.osproductversion"); err == nil && v != "" {
		return v, nil
	}
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run sw_vers: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
