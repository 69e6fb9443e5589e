//go:build !darwin

package system

import "errors"

func productVersion() (string, error) {
	return "", errors.New("not running on macOS")
}
