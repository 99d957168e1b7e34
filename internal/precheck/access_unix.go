//go:build unix

package precheck

import "golang.org/x/sys/unix"

func canRead(path string) error {
	return unix.Access(path, unix.R_OK)
}

func canWriteDir(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
