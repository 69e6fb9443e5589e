//go:build !darwin

package macperms

// Without TCC there is nothing to ask for.
func check(Kind) bool { return true }

func request(Kind) error { return nil }
