package cache

import (
	"bytes"
	"encoding/gob"
)

func init() {
	MustRegisterSerializer(GobSerializer{})
}

// GobSerializer 保留 Go 类型信息；读取时 dst 的类型需要与写入时一致。
type GobSerializer struct{}

func (GobSerializer) Name() string { return "gob" }

func (GobSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobSerializer) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
