package cache

import "encoding/base64"

// maxNameLen 是常见文件系统允许的单个文件名最大字节数。
const maxNameLen = 255

var keyEncoding = base64.URLEncoding

// EncodeKey 把任意 key 编码成不含路径分隔符的文件名，编码是单射的，不同 key 不会冲突。
func EncodeKey(key string) string {
	return keyEncoding.EncodeToString([]byte(key))
}

// DecodeKey 是 EncodeKey 的逆运算；遇到临时文件或外来文件时返回 false。
func DecodeKey(name string) (string, bool) {
	raw, err := keyEncoding.DecodeString(name)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
