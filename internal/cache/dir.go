package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// canonicalDir 将目录转换为绝对路径；目录已存在时进一步解析符号链接。
func canonicalDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// validateDir 每次调用都重新检查目录状态，不缓存结果。
func validateDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirectoryInvalid, dir)
	}
	if !writable(dir) {
		return fmt.Errorf("%w: %s", ErrDirectoryNotWritable, dir)
	}
	return nil
}
