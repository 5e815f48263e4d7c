package util

import (
	"os"
	"path/filepath"
)

// DirExists 检查目录是否存在
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	return err == nil && info.IsDir()
}

// EnsureDir 确保目录存在，如果不存在则创建
func EnsureDir(dirname string) error {
	if dirname == "" || DirExists(dirname) {
		return nil
	}
	return os.MkdirAll(dirname, 0755)
}

// EnsureParentDir 确保文件所在目录存在，当前目录不处理
func EnsureParentDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	return EnsureDir(dir)
}
