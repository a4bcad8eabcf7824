package utils

import (
	"sync"
	"time"
)

// Metrics содержит счетчики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики импорта
	ImportedRows int64
	SkippedRows  int64
	FailedRows   int64

	// Метрики уведомлений
	NotificationsSent   int64
	NotificationsFailed int64
	LastNotification    time.Time

	// Метрики операций и ошибок
	Operations    map[string]int64
	ErrorCount    int64
	LastErrorTime time.Time
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{Operations: make(map[string]int64)}
}

// RecordRequest записывает метрики HTTP-запроса; failed - ответ с кодом 5xx
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
		m.recordErrorLocked()
	}
}

// RecordImport записывает итог пакетного импорта
func (m *Metrics) RecordImport(inserted, skipped, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ImportedRows += int64(inserted)
	m.SkippedRows += int64(skipped)
	m.FailedRows += int64(failed)
}

// RecordNotification записывает попытку отправки уведомления
func (m *Metrics) RecordNotification(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastNotification = time.Now()
	if err != nil {
		m.NotificationsFailed++
		m.recordErrorLocked()
		return
	}
	m.NotificationsSent++
}

// RecordOperation считает выполнение именованной операции
func (m *Metrics) RecordOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Operations[operation]++
	if err != nil {
		m.recordErrorLocked()
	}
}

func (m *Metrics) recordErrorLocked() {
	m.ErrorCount++
	m.LastErrorTime = time.Now()
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ops := make(map[string]int64, len(m.Operations))
	for k, v := range m.Operations {
		ops[k] = v
	}

	return map[string]interface{}{
		"total_requests":       m.TotalRequests,
		"failed_requests":      m.FailedRequests,
		"average_latency_ms":   m.AverageLatency.Milliseconds(),
		"imported_rows":        m.ImportedRows,
		"skipped_rows":         m.SkippedRows,
		"failed_rows":          m.FailedRows,
		"notifications_sent":   m.NotificationsSent,
		"notifications_failed": m.NotificationsFailed,
		"operations":           ops,
		"error_count":          m.ErrorCount,
	}
}
