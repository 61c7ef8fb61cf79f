package cache

import (
	"fmt"
	"time"
)

// expiryPolicy 基于注入的时钟计算过期标记，默认使用 time.Now。
type expiryPolicy struct {
	now func() time.Time
}

func newExpiryPolicy(now func() time.Time) expiryPolicy {
	if now == nil {
		now = time.Now
	}
	return expiryPolicy{now: now}
}

// marker 将 ttl 换算为记录首行：Forever 对应 -1，其余截断为整秒且至少 1 秒。
func (p expiryPolicy) marker(ttl time.Duration) (int64, error) {
	if ttl == Forever {
		return ForeverMarker, nil
	}
	seconds := int64(ttl / time.Second)
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	return p.now().Unix() + seconds, nil
}

// alive 的边界是闭区间：当前秒等于过期时间戳时仍然有效。
func (p expiryPolicy) alive(r Record) bool {
	return r.Forever() || p.now().Unix() <= r.ExpireAt
}

// remaining 返回剩余整秒数；过期或恰好到达边界时为 0。
func (p expiryPolicy) remaining(r Record) time.Duration {
	if r.Forever() {
		return Forever
	}
	left := r.ExpireAt - p.now().Unix()
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * time.Second
}
