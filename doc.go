// Package macperms checks and requests macOS privacy permissions from Go
// without cgo.
//
// Each Kind maps to one system check and one request:
//
//	if !macperms.Check(macperms.ScreenRecording) {
//	    if err := macperms.Request(macperms.ScreenRecording); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Some requests cannot show a prompt. Full Disk Access and Input Monitoring
// open the matching pane in System Settings instead, and the user grants
// access there.
//
// Off macOS every check reports true and every request does nothing.
//
// Photo library access has its own, richer API in the photokit package.
package macperms
