//go:build darwin

// Package native provides the purego/objc runtime helpers shared by the
// permission bridges. No cgo required.
package native

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
)

// Framework paths
const (
	Foundation          = "/System/Library/Frameworks/Foundation.framework/Foundation"
	ApplicationServices = "/System/Library/Frameworks/ApplicationServices.framework/ApplicationServices"
	CoreGraphics        = "/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics"
	IOKit               = "/System/Library/Frameworks/IOKit.framework/IOKit"
	AVFoundation        = "/System/Library/Frameworks/AVFoundation.framework/AVFoundation"
	Photos              = "/System/Library/Frameworks/Photos.framework/Photos"
)

var (
	libsMu sync.Mutex
	libs   = map[string]uintptr{}
)

// Load opens a framework once and returns its handle. Failures are not
// cached, so a later call retries.
func Load(path string) (uintptr, error) {
	libsMu.Lock()
	defer libsMu.Unlock()
	if h, ok := libs[path]; ok {
		return h, nil
	}
	h, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	libs[path] = h
	return h, nil
}

// Cached selectors and classes
var (
	initOnce sync.Once
	initErr  error

	selStringWithUTF8    objc.SEL
	selNumberWithBool    objc.SEL
	selDictWithObjForKey objc.SEL
	selRespondsTo        objc.SEL

	clsNSString     objc.Class
	clsNSNumber     objc.Class
	clsNSDictionary objc.Class
)

// Init loads Foundation and caches the selectors used by the helpers.
func Init() error {
	initOnce.Do(func() {
		if _, err := Load(Foundation); err != nil {
			initErr = err
			return
		}

		selStringWithUTF8 = objc.RegisterName("stringWithUTF8String:")
		selNumberWithBool = objc.RegisterName("numberWithBool:")
		selDictWithObjForKey = objc.RegisterName("dictionaryWithObject:forKey:")
		selRespondsTo = objc.RegisterName("respondsToSelector:")

		clsNSString = objc.GetClass("NSString")
		clsNSNumber = objc.GetClass("NSNumber")
		clsNSDictionary = objc.GetClass("NSDictionary")
	})
	return initErr
}

// DerefGlobal reads an ObjC object pointer from a global variable address.
//
//go:nocheckptr
func DerefGlobal(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr)) //nolint:govet
}

// Symbol loads a global NSString*/CFStringRef constant such as
// kAXTrustedCheckOptionPrompt. It returns 0 when the symbol is missing.
func Symbol(lib uintptr, name string) objc.ID {
	sym, err := purego.Dlsym(lib, name)
	if err != nil {
		return 0
	}
	return objc.ID(DerefGlobal(sym))
}

// NSString creates an NSString from a Go string.
func NSString(s string) objc.ID {
	b := append([]byte(s), 0)
	return objc.ID(clsNSString).Send(selStringWithUTF8, uintptr(unsafe.Pointer(&b[0])))
}

// NSBool returns an NSNumber holding v.
func NSBool(v bool) objc.ID {
	var b uintptr
	if v {
		b = 1
	}
	return objc.ID(clsNSNumber).Send(selNumberWithBool, b)
}

// Dict returns a single-entry NSDictionary.
func Dict(key, value objc.ID) objc.ID {
	return objc.ID(clsNSDictionary).Send(selDictWithObjForKey, value, key)
}

// RespondsTo reports whether obj (a class or instance) implements sel.
func RespondsTo(obj objc.ID, sel objc.SEL) bool {
	if obj == 0 {
		return false
	}
	return objc.Send[bool](obj, selRespondsTo, sel)
}
