//go:build darwin

package macperms

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"

	"github.com/tmc/macperms/internal/native"
)

// AVAuthorizationStatusAuthorized
const avAuthorized = 3

// kIOHIDRequestTypeListenEvent and kIOHIDAccessTypeGranted
const (
	hidRequestListenEvent = 1
	hidAccessGranted      = 0
)

// AVMediaType values are four-character codes.
const (
	mediaTypeAudio = "soun"
	mediaTypeVideo = "vide"
)

var (
	axIsProcessTrusted            func() bool
	axIsProcessTrustedWithOptions func(options uintptr) bool
	axPromptKey                   objc.ID

	cgPreflightScreenCaptureAccess func() bool
	cgRequestScreenCaptureAccess   func() bool

	ioHIDCheckAccess func(request uint32) uint32

	clsAVCaptureDevice                  objc.Class
	selAuthorizationStatusForMediaType  objc.SEL
	selRequestAccessForMediaTypeHandler objc.SEL
)

var loadAX = sync.OnceValue(func() error {
	lib, err := native.Load(native.ApplicationServices)
	if err != nil {
		return err
	}
	purego.RegisterLibFunc(&axIsProcessTrusted, lib, "AXIsProcessTrusted")
	purego.RegisterLibFunc(&axIsProcessTrustedWithOptions, lib, "AXIsProcessTrustedWithOptions")
	if err := native.Init(); err == nil {
		axPromptKey = native.Symbol(lib, "kAXTrustedCheckOptionPrompt")
	}
	return nil
})

var loadCG = sync.OnceValue(func() error {
	lib, err := native.Load(native.CoreGraphics)
	if err != nil {
		return err
	}
	purego.RegisterLibFunc(&cgPreflightScreenCaptureAccess, lib, "CGPreflightScreenCaptureAccess")
	purego.RegisterLibFunc(&cgRequestScreenCaptureAccess, lib, "CGRequestScreenCaptureAccess")
	return nil
})

var loadIOKit = sync.OnceValue(func() error {
	lib, err := native.Load(native.IOKit)
	if err != nil {
		return err
	}
	purego.RegisterLibFunc(&ioHIDCheckAccess, lib, "IOHIDCheckAccess")
	return nil
})

var loadAV = sync.OnceValue(func() error {
	if err := native.Init(); err != nil {
		return err
	}
	if _, err := native.Load(native.AVFoundation); err != nil {
		return err
	}
	clsAVCaptureDevice = objc.GetClass("AVCaptureDevice")
	if clsAVCaptureDevice == 0 {
		return errors.New("AVCaptureDevice class not registered")
	}
	selAuthorizationStatusForMediaType = objc.RegisterName("authorizationStatusForMediaType:")
	selRequestAccessForMediaTypeHandler = objc.RegisterName("requestAccessForMediaType:completionHandler:")
	return nil
})

func check(k Kind) (granted bool) {
	// A missing symbol panics inside purego; report not granted.
	defer func() {
		if r := recover(); r != nil {
			granted = false
		}
	}()

	switch k {
	case Accessibility:
		return loadAX() == nil && axIsProcessTrusted()
	case FullDiskAccess:
		home, err := os.UserHomeDir()
		return err == nil && hasFullDiskAccess(home)
	case ScreenRecording:
		return loadCG() == nil && cgPreflightScreenCaptureAccess()
	case Microphone:
		return mediaAuthorized(mediaTypeAudio)
	case Camera:
		return mediaAuthorized(mediaTypeVideo)
	case InputMonitoring:
		return loadIOKit() == nil && ioHIDCheckAccess(hidRequestListenEvent) == hidAccessGranted
	}
	return false
}

func request(k Kind) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Op: "request", Kind: k, Err: fmt.Errorf("native call failed: %v", r)}
		}
	}()

	switch k {
	case Accessibility:
		if err := loadAX(); err != nil {
			return frameworkError(k, err)
		}
		if axPromptKey == 0 {
			return OpenSettings(k)
		}
		axIsProcessTrustedWithOptions(uintptr(native.Dict(axPromptKey, native.NSBool(true))))
		return nil
	case ScreenRecording:
		if err := loadCG(); err != nil {
			return frameworkError(k, err)
		}
		cgRequestScreenCaptureAccess()
		return nil
	case Microphone:
		return requestMedia(k, mediaTypeAudio)
	case Camera:
		return requestMedia(k, mediaTypeVideo)
	case FullDiskAccess, InputMonitoring:
		return OpenSettings(k)
	}
	return nil
}

func mediaAuthorized(mediaType string) bool {
	if loadAV() != nil {
		return false
	}
	status := objc.Send[int](objc.ID(clsAVCaptureDevice), selAuthorizationStatusForMediaType, native.NSString(mediaType))
	return status == avAuthorized
}

func requestMedia(k Kind, mediaType string) error {
	if err := loadAV(); err != nil {
		return frameworkError(k, err)
	}
	done := make(chan struct{})
	var once sync.Once
	block := objc.NewBlock(func(_ objc.Block, granted bool) {
		once.Do(func() { close(done) })
	})
	go func() {
		<-done
		block.Release()
	}()
	objc.ID(clsAVCaptureDevice).Send(selRequestAccessForMediaTypeHandler, native.NSString(mediaType), block)
	return nil
}

func frameworkError(k Kind, err error) error {
	return &Error{
		Op:   "request",
		Kind: k,
		Err:  err,
		Help: fmt.Sprintf("grant %s in %s > Privacy & Security", k, settingsAppName()),
	}
}
