package utils

import (
	"sync"
	"time"
)

// RateLimiter ограничивает число запросов на ключ (IP или имя пользователя) в скользящем окне
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Limit возвращает максимальное число запросов в окне
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow проверяет, разрешен ли запрос, и учитывает его
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.prune(key, time.Now())
	if len(valid) >= rl.limit {
		return false
	}

	rl.requests[key] = append(valid, time.Now())
	return true
}

// GetRemaining возвращает количество оставшихся запросов
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.limit - len(rl.prune(key, time.Now()))
}

// GetResetTime возвращает момент, когда освободится самый старый слот
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.prune(key, time.Now())
	if len(valid) == 0 {
		return time.Now()
	}
	return valid[0].Add(rl.window)
}

// prune убирает запросы вне окна; пустой ключ удаляется, чтобы карта не росла
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)
	var valid []time.Time
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.requests, key)
		return nil
	}
	rl.requests[key] = valid
	return valid
}
