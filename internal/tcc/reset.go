package tcc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// runTCCUtil is replaced in tests.
var runTCCUtil = func(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "tccutil", args...).CombinedOutput()
}

// Reset clears the stored decision for service, so the next request shows
// the prompt again. service is a short or full name from KnownServices, or
// "All". An empty bundleID resets the service for every client.
func Reset(ctx context.Context, log *slog.Logger, service, bundleID string) error {
	if service == "" {
		return errors.New("tcc: service cannot be empty")
	}
	short := "All"
	if !strings.EqualFold(service, "All") {
		s, ok := LookupService(service)
		if !ok {
			return fmt.Errorf("tcc: unknown service %q", service)
		}
		short = s.Short
	}

	args := []string{"reset", short}
	if bundleID != "" {
		args = append(args, bundleID)
	}

	log.Debug("tcc: resetting", "service", short, "bundle_id", bundleID)
	output, err := runTCCUtil(ctx, args...)
	if err != nil {
		log.Debug("tcc: tccutil failed", "output", strings.TrimSpace(string(output)))
		return fmt.Errorf("tccutil reset %s failed: %w", short, err)
	}
	if len(output) > 0 {
		log.Debug("tcc: tccutil output", "output", strings.TrimSpace(string(output)))
	}
	return nil
}
