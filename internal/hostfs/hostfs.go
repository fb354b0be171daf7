// Package hostfs defines the HostFS contract the server's FSBridge half
// dispatches filesystem requests against (spec.md §6). The host filesystem
// itself is out of core scope; this package only names the interface, plus
// (in the osfs subpackage) one concrete os-backed adapter used by the demo
// binaries and end-to-end tests.
package hostfs

import "io"

// Attributes mirrors packet.FSAttributes at the HostFS boundary, before
// error-code translation. Fields default to their zero value when the
// underlying filesystem doesn't track them (spec.md §6).
type Attributes struct {
	Size       uint32
	Created    uint64
	Modified   uint64
	IsDir      bool
	IsReadOnly bool
}

// WriteHandle is an open write-class file, committed in full on the
// matching kind-9 FSData from the client (spec.md §4.6).
type WriteHandle interface {
	io.Writer
	io.Closer
}

// NotFoundError marks an operation that failed because the path doesn't
// exist, distinct from other I/O errors, so FSBridge can choose the
// correct FSAttributes.ErrorCode (spec.md §4.3: 0 ok, 1 no-entry, 2 error).
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "hostfs: not found: " + e.Path }

// HostFS is the narrow contract FSBridge needs from a real filesystem.
type HostFS interface {
	Exists(path string) bool
	IsDir(path string) bool
	IsReadOnly(path string) bool
	GetSize(path string) (uint32, error)
	GetDrive(path string) (string, error)
	GetCapacity(path string) (uint32, error)
	GetFreeSpace(path string) (uint32, error)
	List(path string) ([]string, error)
	Attributes(path string) (Attributes, error)
	Find(pattern string) ([]string, error)
	MakeDir(path string) error
	Delete(path string) error
	Copy(src, dst string) error
	Move(src, dst string) error

	// ReadFile returns the whole file body, for a read-class open
	// (modes r/rb). binary is true for the *b modes; HostFS
	// implementations that don't distinguish text/binary may ignore it.
	ReadFile(path string, binary bool) ([]byte, error)

	// OpenWrite opens path for a write-class open (modes w/a/wb/ab) and
	// returns a handle FSBridge commits the client's upload into.
	OpenWrite(path string, mode string) (WriteHandle, error)
}
