// Package perms provides centralized file permission constants for files written by fingate.
package perms

import "os"

const (
	// RegularFile permissions for standard files (configuration skeletons, logs).
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// Directory permissions for generated documentation directories.
	// Mode 0755: owner read/write/execute, group and others read/execute.
	Directory os.FileMode = 0o755
)
