package utils

import (
	"os"
)

// EnsureUploadDir creates the local uploads directory if it doesn't exist.
// Served read-only at /uploads for assets that predate the R2 migration.
func EnsureUploadDir() error {
	return os.MkdirAll("uploads", os.ModePerm)
}
