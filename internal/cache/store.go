package cache

import (
	"context"
	"errors"
	"time"
)

// Forever 作为 TTL 传入 Set 表示条目永不过期；TTL 查询对永久条目也返回该值。
const Forever time.Duration = -1

// Store 负责管理磁盘缓存条目。磁盘布局遵循：
//
//	<StoragePath>/<base64url(key)>    # 第一行过期标记，其余为序列化后的值
//
// 所有读取操作都会顺带删除已过期的条目（惰性过期），不存在后台清理。
type Store interface {
	// Dir 返回校验后的缓存目录；目录不存在或不可写时分别返回
	// ErrDirectoryInvalid / ErrDirectoryNotWritable。
	Dir() (string, error)

	// Get 将条目反序列化到 dst。不存在、已过期或无法解析时返回 ErrNotFound；
	// dst 不是非 nil 指针时返回 ErrInvalidTarget。
	Get(ctx context.Context, key string, dst any) error

	// Set 写入条目。ttl 为 Forever 或不少于 1 秒，否则返回 ErrInvalidTTL 且不写入。
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Remove 尽力删除条目，文件不存在或删除失败都不会报错。
	Remove(ctx context.Context, key string) error

	// Exists 判断条目是否仍然有效，不做反序列化。
	Exists(ctx context.Context, key string) (bool, error)

	// Keys 列出目录中全部有效 key；pattern 为空或 "*" 时匹配全部，
	// 否则按首尾锚定的正则做完整匹配。
	Keys(ctx context.Context, pattern string) ([]string, error)

	// TTL 返回剩余存活时间：永久条目为 Forever，不存在或已过期为 0。
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Increment 将计数器加 step 并返回写入后的值；溢出时返回 ErrCounterOverflow。
	Increment(ctx context.Context, key string, step int64) (int64, error)

	// Decrement 将计数器减 step 并返回写入后的值。
	Decrement(ctx context.Context, key string, step int64) (int64, error)

	// Sweep 主动扫描目录并删除所有已过期条目，返回删除数量。
	Sweep(ctx context.Context) (int, error)
}

var (
	// ErrNotFound 表示缓存不存在或已过期。
	ErrNotFound = errors.New("cache entry not found")

	// ErrDirectoryInvalid 表示缓存目录不存在或不是目录。
	ErrDirectoryInvalid = errors.New("cache directory is invalid")

	// ErrDirectoryNotWritable 表示缓存目录存在但不可写。
	ErrDirectoryNotWritable = errors.New("cache directory is not writable")

	// ErrInvalidTTL 表示 ttl 既不是 Forever 也不是正的秒数。
	ErrInvalidTTL = errors.New("invalid ttl")

	// ErrInvalidKey 表示 key 为空或编码后超出文件名长度限制。
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrInvalidPattern 表示 Keys 收到无法编译的正则。
	ErrInvalidPattern = errors.New("invalid key pattern")

	// ErrMalformedEntry 表示条目文件缺少过期标记或标记非法。
	ErrMalformedEntry = errors.New("malformed cache entry")

	// ErrDeserialize 表示条目值无法反序列化。
	ErrDeserialize = errors.New("cannot deserialize cache value")

	// ErrCounterOverflow 表示计数器运算超出 int64 范围，此时不会写入。
	ErrCounterOverflow = errors.New("cache counter overflow")

	// ErrInvalidTarget 表示 Get 的 dst 不是非 nil 指针。
	ErrInvalidTarget = errors.New("cache target must be a non-nil pointer")
)
