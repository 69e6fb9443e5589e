// Package photokit exposes photo library authorization state through a
// cacheable, concurrency-safe interface.
//
// A Bridge performs the native calls. A Manager caches their results per
// access level for a fixed TTL. A Registry tracks who wants to hear about
// status changes and emits ChangeEvent values to an EventSink. The Manager
// and the Registry do not call each other; a Watcher, or any other
// coordinator, feeds detected changes into Registry.HandlePermissionChange.
//
// Status checks never fail because the native authority misbehaved: a panic
// or an unreachable authority at the native boundary is reported as
// NotDetermined. Requests and listener management report their errors.
//
// Off macOS there is no authority. Checks and requests report Authorized,
// the photo count is 0, and IsFrameworkAvailable is false.
//
//	m := photokit.NewManager()
//	status, err := m.CheckAuthorizationStatus(photokit.ReadWrite)
package photokit
