package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Options 控制 Store 的可选依赖，零值使用 logrus 全局 logger、json 序列化与 time.Now。
type Options struct {
	Logger     logrus.FieldLogger
	Serializer Serializer
	Now        func() time.Time
}

// NewStore 以 basePath 为根目录构建磁盘缓存。这里只做路径规范化，
// 目录的存在性与可写性在每次操作时重新校验。
func NewStore(basePath string, opts Options) (Store, error) {
	if basePath == "" {
		return nil, errors.New("storage path required")
	}

	dir, err := canonicalDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer, _ = ResolveSerializer(DefaultSerializerName())
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &fileStore{
		basePath:   dir,
		serializer: serializer,
		logger:     logger,
		policy:     newExpiryPolicy(opts.Now),
		locks:      make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 串行化同一 key 的写入与过期清理。
type fileStore struct {
	basePath   string
	serializer Serializer
	logger     logrus.FieldLogger
	policy     expiryPolicy

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Dir() (string, error) {
	if err := validateDir(s.basePath); err != nil {
		return "", err
	}
	return s.basePath, nil
}

func (s *fileStore) Get(ctx context.Context, key string, dst any) error {
	if v := reflect.ValueOf(dst); v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, dst)
	}
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}

	rec, err := s.lookup(key, filePath)
	if err != nil {
		return err
	}
	if err := s.serializer.Unmarshal(rec.Payload, dst); err != nil {
		s.logger.WithFields(entryFields("get", key, filePath)).
			WithError(err).Warn("cache value cannot be deserialized")
		return fmt.Errorf("%w (%w: %v)", ErrNotFound, ErrDeserialize, err)
	}
	return nil
}

func (s *fileStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}

	marker, err := s.policy.marker(ttl)
	if err != nil {
		return err
	}
	payload, err := s.serializer.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize cache value: %w", err)
	}

	unlock := s.lockEntry(key)
	defer unlock()

	return s.write(filePath, Record{ExpireAt: marker, Payload: payload})
}

func (s *fileStore) Remove(ctx context.Context, key string) error {
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}

	unlock := s.lockEntry(key)
	defer unlock()

	s.unlink(key, filePath)
	return nil
}

func (s *fileStore) Exists(ctx context.Context, key string) (bool, error) {
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return false, err
	}

	if _, err := s.lookup(key, filePath); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *fileStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	match, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ok := decodeEntryName(entry.Name())
		if !ok {
			continue
		}
		// 先做有效性检查，让不匹配 pattern 的过期条目同样被清理。
		if _, err := s.lookup(key, filepath.Join(dir, entry.Name())); err != nil {
			continue
		}
		if match != nil && !match.MatchString(key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *fileStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return 0, err
	}

	rec, err := s.lookup(key, filePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return s.policy.remaining(rec), nil
}

func (s *fileStore) Increment(ctx context.Context, key string, step int64) (int64, error) {
	return s.adjust(ctx, key, step)
}

func (s *fileStore) Decrement(ctx context.Context, key string, step int64) (int64, error) {
	if step == math.MinInt64 {
		return 0, fmt.Errorf("%w: cannot negate step %d", ErrCounterOverflow, step)
	}
	return s.adjust(ctx, key, -step)
}

func (s *fileStore) Sweep(ctx context.Context) (int, error) {
	dir, err := s.Dir()
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		key, ok := decodeEntryName(entry.Name())
		if !ok {
			continue
		}
		filePath := filepath.Join(dir, entry.Name())
		rec, err := s.readRecord(filePath)
		if err != nil || s.policy.alive(rec) {
			continue
		}
		if s.evict(key, filePath) {
			removed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"action":  "sweep",
		"dir":     dir,
		"scanned": len(entries),
		"removed": removed,
	}).Debug("cache sweep finished")
	return removed, nil
}

// adjust 在持有 key 锁的情况下完成读-改-写。剩余 TTL 为 0（不存在、损坏、
// 刚过期或恰好处于边界秒）时计数器重置为 delta 并改为永久；否则累加并保留剩余 TTL。
func (s *fileStore) adjust(ctx context.Context, key string, delta int64) (int64, error) {
	filePath, err := s.prepare(ctx, key)
	if err != nil {
		return 0, err
	}

	unlock := s.lockEntry(key)
	defer unlock()

	var (
		current   int64
		remaining time.Duration
	)
	rec, err := s.load(key, filePath)
	switch {
	case err == nil && s.policy.alive(rec):
		current = s.counterValue(rec.Payload)
		remaining = s.policy.remaining(rec)
	case err == nil:
		s.unlink(key, filePath)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMalformedEntry):
	default:
		return 0, err
	}

	value := delta
	ttl := Forever
	if remaining != 0 {
		if addOverflows(current, delta) {
			return 0, fmt.Errorf("%w: %d%+d", ErrCounterOverflow, current, delta)
		}
		value = current + delta
		ttl = remaining
	}

	marker, err := s.policy.marker(ttl)
	if err != nil {
		return 0, err
	}
	payload, err := s.serializer.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("serialize counter: %w", err)
	}
	if err := s.write(filePath, Record{ExpireAt: marker, Payload: payload}); err != nil {
		return 0, err
	}
	return value, nil
}

// counterValue 将已存储的值转换为整数，无法转换时视为 0。
// 依次尝试 int64、string、float64、bool，兼容不保留动态类型的 gob。
func (s *fileStore) counterValue(payload []byte) int64 {
	var n int64
	if err := s.serializer.Unmarshal(payload, &n); err == nil {
		return n
	}
	var str string
	if err := s.serializer.Unmarshal(payload, &str); err == nil {
		return parseCounter(str)
	}
	var f float64
	if err := s.serializer.Unmarshal(payload, &f); err == nil {
		return truncateCounter(f)
	}
	var b bool
	if err := s.serializer.Unmarshal(payload, &b); err == nil {
		return cast.ToInt64(b)
	}
	return 0
}

// parseCounter 按十进制解析字符串，"010" 为 10，"0x10" 不是数字。
// 小数与科学计数法向零截断。
func parseCounter(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return truncateCounter(f)
}

// truncateCounter 向零截断；NaN、Inf 与超出 int64 的值视为 0。
func truncateCounter(f float64) int64 {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func addOverflows(a, b int64) bool {
	if b > 0 {
		return a > math.MaxInt64-b
	}
	return a < math.MinInt64-b
}

func (s *fileStore) prepare(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.entryPath(key)
}

func (s *fileStore) entryPath(key string) (string, error) {
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	name := EncodeKey(key)
	if len(name) > maxNameLen {
		return "", fmt.Errorf("%w: encoded name exceeds %d bytes", ErrInvalidKey, maxNameLen)
	}
	return filepath.Join(dir, name), nil
}

// lookup 返回仍然有效的记录；过期条目会被删除，损坏条目按不存在处理。
func (s *fileStore) lookup(key, filePath string) (Record, error) {
	rec, err := s.load(key, filePath)
	if err != nil {
		if errors.Is(err, ErrMalformedEntry) {
			return Record{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return Record{}, err
	}
	if !s.policy.alive(rec) {
		s.evict(key, filePath)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// load 在 readRecord 基础上记录损坏条目。
func (s *fileStore) load(key, filePath string) (Record, error) {
	rec, err := s.readRecord(filePath)
	if err != nil && errors.Is(err, ErrMalformedEntry) {
		s.logger.WithFields(entryFields("read", key, filePath)).
			WithError(err).Warn("malformed cache entry")
	}
	return rec, err
}

func (s *fileStore) readRecord(filePath string) (Record, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if info.IsDir() {
		return Record{}, ErrNotFound
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return DecodeRecord(data)
}

// evict 在锁内重新读取记录，只有仍处于过期状态时才删除，避免误删并发写入的新值。
func (s *fileStore) evict(key, filePath string) bool {
	unlock := s.lockEntry(key)
	defer unlock()

	rec, err := s.readRecord(filePath)
	if err != nil || s.policy.alive(rec) {
		return false
	}
	return s.unlink(key, filePath)
}

// unlink 忽略删除失败，仅在 debug 级别记录。
func (s *fileStore) unlink(key, filePath string) bool {
	if err := os.Remove(filePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WithFields(entryFields("remove", key, filePath)).
				WithError(err).Debug("cache entry removal failed")
		}
		return false
	}
	return true
}

func (s *fileStore) write(filePath string, rec Record) error {
	tempFile, err := os.CreateTemp(filepath.Dir(filePath), ".cache-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(EncodeRecord(rec))
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}

func (s *fileStore) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// decodeEntryName 只接受规范编码的文件名，确保解码出的 key 能映射回同一个文件。
func decodeEntryName(name string) (string, bool) {
	key, ok := DecodeKey(name)
	if !ok || key == "" || EncodeKey(key) != name {
		return "", false
	}
	return key, true
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" || pattern == "*" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

func entryFields(action, key, filePath string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"key":    key,
		"file":   filePath,
	}
}
