package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/tmc/macperms/internal/system"
	"github.com/tmc/macperms/photokit"
)

type versionInfo struct {
	Version         string `json:"version"`
	GoVersion       string `json:"go_version"`
	Platform        string `json:"platform"`
	MacOS           string `json:"macos,omitempty"`
	MacOSRelease    string `json:"macos_release,omitempty"`
	SettingsAppName string `json:"settings_app,omitempty"`
	PhotosLibrary   bool   `json:"photos_library"`
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and platform information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			info.PhotosLibrary = photokit.NewManager(photokit.WithLogger(a.log)).IsFrameworkAvailable()
			return a.emit(info, func(w io.Writer) {
				fmt.Fprintf(w, "macperms %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
				if info.MacOS != "" {
					fmt.Fprintf(w, "macOS %s %s\n", info.MacOS, info.MacOSRelease)
				}
				fmt.Fprintf(w, "photo library authority: %v\n", info.PhotosLibrary)
			})
		},
	}
}

func currentVersion() versionInfo {
	info := versionInfo{
		Version:   "(devel)",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		info.Version = bi.Main.Version
	}
	if v, err := system.CurrentMacOSVersion(); err == nil {
		info.MacOS = v.String()
		info.MacOSRelease = v.ReleaseName()
		info.SettingsAppName = v.SettingsAppName()
	}
	return info
}
