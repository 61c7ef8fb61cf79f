//go:build !unix

package cache

import "os"

// writable 在没有 access(2) 的平台上通过创建探测文件判断目录是否可写。
func writable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".cache-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}
