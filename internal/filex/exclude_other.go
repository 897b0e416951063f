//go:build !linux

package filex

func excludeFromBackup(string) error { return nil }
