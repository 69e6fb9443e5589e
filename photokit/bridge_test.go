package photokit

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestFailOpen(t *testing.T) {
	tests := []struct {
		name       string
		call       func() (AuthorizationStatus, error)
		wantStatus AuthorizationStatus
		wantErr    error
	}{
		{
			name:       "success",
			call:       func() (AuthorizationStatus, error) { return Limited, nil },
			wantStatus: Limited,
		},
		{
			name:       "panic",
			call:       func() (AuthorizationStatus, error) { panic("objc: unrecognized selector") },
			wantStatus: NotDetermined,
		},
		{
			name: "runtime error",
			call: func() (AuthorizationStatus, error) {
				var seen map[AccessLevel]bool
				seen[Read] = true
				return Authorized, nil
			},
			wantStatus: NotDetermined,
		},
		{
			name: "framework unavailable",
			call: func() (AuthorizationStatus, error) {
				return "", fmt.Errorf("%w: dlopen failed", ErrFrameworkUnavailable)
			},
			wantStatus: NotDetermined,
		},
		{
			name: "request failed",
			call: func() (AuthorizationStatus, error) {
				return "", &RequestFailedError{Detail: "authority unreachable"}
			},
			wantStatus: NotDetermined,
		},
		{
			name:    "unknown native status",
			call:    func() (AuthorizationStatus, error) { return "", InvalidAuthorizationStatusError(9) },
			wantErr: InvalidAuthorizationStatusError(9),
		},
		{
			name:    "invalid access level",
			call:    func() (AuthorizationStatus, error) { return "", InvalidAccessLevelError("everything") },
			wantErr: InvalidAccessLevelError("everything"),
		},
	}

	log := slog.New(slog.DiscardHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := failOpen(log, "check", Read, tt.call)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
