package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/internal/config"
	"github.com/tmc/macperms/photokit"
)

func TestLevelsValue(t *testing.T) {
	tests := []struct {
		name    string
		sets    []string
		want    []photokit.AccessLevel
		wantErr bool
	}{
		{"defaults", nil, []photokit.AccessLevel{photokit.ReadWrite}, false},
		{"replaces defaults", []string{"read"}, []photokit.AccessLevel{photokit.Read}, false},
		{"comma list", []string{"read,addOnly"}, []photokit.AccessLevel{photokit.Read, photokit.AddOnly}, false},
		{"repeated", []string{"read", "addOnly", "read"}, []photokit.AccessLevel{photokit.Read, photokit.AddOnly}, false},
		{"spaces", []string{" read , readWrite"}, []photokit.AccessLevel{photokit.Read, photokit.ReadWrite}, false},
		{"invalid", []string{"everything"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newLevelsValue(photokit.ReadWrite)
			var err error
			for _, s := range tt.sets {
				if err = v.Set(s); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := v.Levels(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Levels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelsValueString(t *testing.T) {
	v := newLevelsValue(photokit.AccessLevels()...)
	if got := v.String(); got != "read,readWrite,addOnly" {
		t.Errorf("String() = %q", got)
	}
	if v.Type() != "level" {
		t.Errorf("Type() = %q", v.Type())
	}
}

func TestParseKinds(t *testing.T) {
	all, err := parseKinds(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(macperms.Kinds()) {
		t.Errorf("parseKinds(nil) = %d kinds, want %d", len(all), len(macperms.Kinds()))
	}

	got, err := parseKinds([]string{"camera", "screen_recording"})
	if err != nil {
		t.Fatal(err)
	}
	want := []macperms.Kind{macperms.Camera, macperms.ScreenRecording}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseKinds() = %v, want %v", got, want)
	}

	if _, err := parseKinds([]string{"camera", "telepathy"}); err == nil {
		t.Error("parseKinds() accepted an unknown permission")
	}
}

func TestEmit(t *testing.T) {
	v := kindStatus{Permission: macperms.Camera, Granted: true}
	text := func(w io.Writer) { io.WriteString(w, "camera yes\n") }

	var buf bytes.Buffer
	a := &app{out: &buf}
	if err := a.emit(v, text); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "camera yes\n" {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	a.jsonOut = true
	if err := a.emit(v, text); err != nil {
		t.Fatal(err)
	}
	var got kindStatus
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("json output %q: %v", buf.String(), err)
	}
	if got != v {
		t.Errorf("json output = %+v, want %+v", got, v)
	}
}

func TestExitCode(t *testing.T) {
	hinted := &macperms.Error{Op: "open settings", Kind: macperms.Camera, Err: errors.New("exit status 1"), Help: "open it by hand"}
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("boom"), 1},
		{&macperms.Error{Op: "request", Err: errors.New("boom")}, 1},
		{hinted, 2},
		{fmt.Errorf("request: %w", hinted), 2},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestTCCDBPath(t *testing.T) {
	t.Setenv("HOME", "/Users/someone")

	tests := []struct {
		flag string
		want string
	}{
		{"", "/Users/someone/Library/Application Support/com.apple.TCC/TCC.db"},
		{"user", "/Users/someone/Library/Application Support/com.apple.TCC/TCC.db"},
		{"system", "/Library/Application Support/com.apple.TCC/TCC.db"},
		{"/tmp/TCC.db", "/tmp/TCC.db"},
	}
	for _, tt := range tests {
		got, err := tccDBPath(tt.flag)
		if err != nil {
			t.Fatalf("tccDBPath(%q): %v", tt.flag, err)
		}
		if got != tt.want {
			t.Errorf("tccDBPath(%q) = %q, want %q", tt.flag, got, tt.want)
		}
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&app{out: io.Discard})
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	want := []string{"check", "photos", "request", "serve", "tcc", "version"}
	for _, w := range want {
		if !contains(names, w) {
			t.Errorf("root command missing %q (have %v)", w, names)
		}
	}

	photos, _, err := root.Find([]string{"photos", "watch"})
	if err != nil || photos.Name() != "watch" {
		t.Errorf("Find(photos watch) = %v, %v", photos, err)
	}
}

func TestSetupFlagOverrides(t *testing.T) {
	t.Setenv("MACPERMS_CONFIG", "")
	t.Setenv("MACPERMS_DEBUG", "")
	t.Setenv("MACPERMS_CACHE_TTL", "")
	t.Setenv("MACPERMS_LOG_DEST", "")

	var out bytes.Buffer
	a := &app{out: &out}
	root := newRootCmd(a)
	root.SetArgs([]string{"--debug", "--json", "tcc", "services"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !a.cfg.Log.Debug {
		t.Error("--debug did not reach the config")
	}
	if !a.log.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger not at debug level")
	}
	if a.cfg.CacheTTL.Std() != config.Default().CacheTTL.Std() {
		t.Errorf("cache ttl = %v", a.cfg.CacheTTL.Std())
	}
	if !strings.Contains(out.String(), `"short":"Photos"`) {
		t.Errorf("services output = %q", out.String())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
