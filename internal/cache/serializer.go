package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Serializer 决定条目值的磁盘表示，必须能完整往返结构化数据。
type Serializer interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

const defaultSerializerName = "json"

var globalSerializers = newSerializerRegistry()

type serializerRegistry struct {
	mu    sync.RWMutex
	items map[string]Serializer
}

func newSerializerRegistry() *serializerRegistry {
	return &serializerRegistry{items: make(map[string]Serializer)}
}

// DefaultSerializerName 返回未配置时使用的序列化格式。
func DefaultSerializerName() string {
	return defaultSerializerName
}

// RegisterSerializer 将序列化器加入全局注册表，重复名称会返回错误。
func RegisterSerializer(s Serializer) error {
	return globalSerializers.register(s)
}

// MustRegisterSerializer 在注册失败时 panic，适合 init() 中调用。
func MustRegisterSerializer(s Serializer) {
	if err := RegisterSerializer(s); err != nil {
		panic(err)
	}
}

// ResolveSerializer 按名称查找序列化器，名称大小写不敏感。
func ResolveSerializer(name string) (Serializer, bool) {
	return globalSerializers.resolve(name)
}

// SerializerNames 返回按名称排序的已注册序列化器，供配置校验提示使用。
func SerializerNames() []string {
	return globalSerializers.names()
}

func (r *serializerRegistry) normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *serializerRegistry) register(s Serializer) error {
	if s == nil {
		return fmt.Errorf("serializer is required")
	}
	name := r.normalize(s.Name())
	if name == "" {
		return fmt.Errorf("serializer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return fmt.Errorf("serializer %s already registered", name)
	}
	r.items[name] = s
	return nil
}

func (r *serializerRegistry) resolve(name string) (Serializer, bool) {
	normalized := r.normalize(name)
	if normalized == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[normalized]
	return s, ok
}

func (r *serializerRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.items))
	for name := range r.items {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
