package cache

import "github.com/goccy/go-json"

func init() {
	MustRegisterSerializer(JSONSerializer{})
}

// JSONSerializer 是默认格式，数字反序列化到 any 时为 float64。
type JSONSerializer struct{}

func (JSONSerializer) Name() string { return "json" }

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
