//go:build darwin

package photokit

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/purego/objc"

	"github.com/tmc/macperms/internal/native"
	"github.com/tmc/macperms/internal/system"
)

// PHAssetMediaTypeImage
const assetMediaTypeImage = 1

var (
	photosOnce sync.Once
	photosErr  error

	clsPHPhotoLibrary objc.Class
	clsPHAsset        objc.Class

	selAuthorizationStatusForAccessLevel  objc.SEL
	selRequestAuthorizationForAccessLevel objc.SEL
	selFetchAssetsWithMediaType           objc.SEL
	selCount                              objc.SEL
)

func loadPhotos() error {
	photosOnce.Do(func() {
		if err := native.Init(); err != nil {
			photosErr = fmt.Errorf("%w: %v", ErrFrameworkUnavailable, err)
			return
		}
		if _, err := native.Load(native.Photos); err != nil {
			photosErr = fmt.Errorf("%w: %v", ErrFrameworkUnavailable, err)
			return
		}

		selAuthorizationStatusForAccessLevel = objc.RegisterName("authorizationStatusForAccessLevel:")
		selRequestAuthorizationForAccessLevel = objc.RegisterName("requestAuthorizationForAccessLevel:handler:")
		selFetchAssetsWithMediaType = objc.RegisterName("fetchAssetsWithMediaType:options:")
		selCount = objc.RegisterName("count")

		clsPHPhotoLibrary = objc.GetClass("PHPhotoLibrary")
		clsPHAsset = objc.GetClass("PHAsset")
		if clsPHPhotoLibrary == 0 || clsPHAsset == 0 {
			photosErr = fmt.Errorf("%w: PHPhotoLibrary class not registered", ErrFrameworkUnavailable)
		}
	})
	return photosErr
}

// nativeBridge talks to PHPhotoLibrary through the Objective-C runtime.
type nativeBridge struct {
	log        *slog.Logger
	onDecision DecisionFunc
}

func newPlatformBridge(log *slog.Logger, onDecision DecisionFunc) Bridge {
	return &nativeBridge{log: log, onDecision: onDecision}
}

func (b *nativeBridge) CheckAuthorizationStatus(level AccessLevel) (AuthorizationStatus, error) {
	if !level.Valid() {
		return "", InvalidAccessLevelError(level)
	}
	return failOpen(b.log, "check", level, func() (AuthorizationStatus, error) {
		return b.status(level)
	})
}

func (b *nativeBridge) RequestAuthorization(level AccessLevel) (AuthorizationStatus, error) {
	if !level.Valid() {
		return "", InvalidAccessLevelError(level)
	}
	return failOpen(b.log, "request", level, func() (AuthorizationStatus, error) {
		if err := loadPhotos(); err != nil {
			return "", err
		}
		handler := b.completion(level)
		objc.ID(clsPHPhotoLibrary).Send(selRequestAuthorizationForAccessLevel, level.Native(), handler)
		return b.status(level)
	})
}

func (b *nativeBridge) status(level AccessLevel) (AuthorizationStatus, error) {
	if err := loadPhotos(); err != nil {
		return "", err
	}
	v := objc.Send[int](objc.ID(clsPHPhotoLibrary), selAuthorizationStatusForAccessLevel, level.Native())
	s, ok := StatusFromNative(v)
	if !ok {
		return "", InvalidAuthorizationStatusError(v)
	}
	return s, nil
}

// completion builds the handler block passed to the request call. The block
// is released after PhotoKit has invoked it.
func (b *nativeBridge) completion(level AccessLevel) objc.Block {
	done := make(chan struct{})
	var once sync.Once
	block := objc.NewBlock(func(_ objc.Block, v int) {
		defer once.Do(func() { close(done) })
		s, ok := StatusFromNative(v)
		if !ok {
			b.log.Warn("authorization handler reported unknown status", "level", level, "value", v)
			return
		}
		b.log.Debug("authorization decision delivered", "level", level, "status", s)
		if b.onDecision != nil {
			b.onDecision(level, s)
		}
	})
	go func() {
		<-done
		block.Release()
	}()
	return block
}

func (b *nativeBridge) PhotosCount() (count uint64, err error) {
	if err := loadPhotos(); err != nil {
		return 0, err
	}
	status, err := b.status(Read)
	if err != nil {
		return 0, err
	}
	if !status.IsAuthorized() {
		return 0, &RequestFailedError{Detail: "photo library read access is " + string(status)}
	}

	defer func() {
		if r := recover(); r != nil {
			count, err = 0, &RequestFailedError{Detail: fmt.Sprintf("fetch assets: %v", r)}
		}
	}()
	result := objc.ID(clsPHAsset).Send(selFetchAssetsWithMediaType, assetMediaTypeImage, objc.ID(0))
	if result == 0 {
		return 0, &RequestFailedError{Detail: "fetchAssetsWithMediaType returned nil"}
	}
	return uint64(objc.Send[uint](result, selCount)), nil
}

func (b *nativeBridge) IsFrameworkAvailable() bool {
	if err := loadPhotos(); err != nil {
		return false
	}
	// The access-level API arrived in macOS 11.
	if v, err := system.CurrentMacOSVersion(); err == nil && !v.IsAtLeast(11, 0, 0) {
		return false
	}
	return native.RespondsTo(objc.ID(clsPHPhotoLibrary), selAuthorizationStatusForAccessLevel)
}
