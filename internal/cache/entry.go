package cache

import (
	"bytes"
	"fmt"
	"strconv"
)

// ForeverMarker 是记录首行中表示永不过期的标记。
const ForeverMarker int64 = -1

// Record 是单个条目文件的内容：过期标记 + 仍处于序列化状态的值。
type Record struct {
	ExpireAt int64
	Payload  []byte
}

// Forever 判断记录是否永不过期。
func (r Record) Forever() bool {
	return r.ExpireAt == ForeverMarker
}

// EncodeRecord 生成 "<marker>\n<payload>" 格式的文件内容。
func EncodeRecord(r Record) []byte {
	marker := strconv.FormatInt(r.ExpireAt, 10)
	buf := make([]byte, 0, len(marker)+1+len(r.Payload))
	buf = append(buf, marker...)
	buf = append(buf, '\n')
	return append(buf, r.Payload...)
}

// DecodeRecord 解析首行过期标记，首个换行之后的全部字节作为 Payload 原样返回。
func DecodeRecord(data []byte) (Record, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return Record{}, fmt.Errorf("%w: missing expire marker line", ErrMalformedEntry)
	}

	line := bytes.TrimSpace(data[:idx])
	marker, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: expire marker %q", ErrMalformedEntry, line)
	}
	if marker != ForeverMarker && marker <= 0 {
		return Record{}, fmt.Errorf("%w: expire marker %d", ErrMalformedEntry, marker)
	}

	return Record{
		ExpireAt: marker,
		Payload:  data[idx+1:],
	}, nil
}
