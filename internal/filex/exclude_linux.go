//go:build linux

package filex

import "golang.org/x/sys/unix"

// backupXattr is honoured by Déjà Dup and other freedesktop backup tools.
const backupXattr = "user.xdg.robots.backup"

func excludeFromBackup(path string) error {
	return unix.Setxattr(path, backupXattr, []byte("false"), 0)
}
