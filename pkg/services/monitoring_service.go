package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダー名です。
const RequestIDHeader = "X-Request-ID"

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	RequestID    string        `json:"requestId"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
// 保持するログは maxEntries 件までで、古いものから破棄されます。
type MonitoringService struct {
	logs       []LogEntry
	maxEntries int
	logger     logrus.FieldLogger
	now        func() time.Time
	mu         sync.RWMutex
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService(maxEntries int, logger logrus.FieldLogger) *MonitoringService {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MonitoringService{
		logs:       make([]LogEntry, 0),
		maxEntries: maxEntries,
		logger:     logger.WithField("component", "access_log"),
		now:        time.Now,
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if overflow := len(s.logs) - s.maxEntries; overflow > 0 {
		s.logs = append([]LogEntry(nil), s.logs[overflow:]...)
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
// X-Request-ID が無い場合は採番してレスポンスにも付与します。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		// 次のミドルウェア/ハンドラを実行
		c.Next()

		entry := LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         c.Request.URL.Path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		}

		fields := logrus.Fields{
			"request_id":  entry.RequestID,
			"method":      entry.Method,
			"path":        entry.Path,
			"status":      entry.StatusCode,
			"duration_ms": entry.ResponseTime.Milliseconds(),
		}
		switch {
		case entry.StatusCode >= 500:
			s.logger.WithFields(fields).Error("API request")
		case entry.StatusCode >= 400:
			s.logger.WithFields(fields).Warn("API request")
		default:
			s.logger.WithFields(fields).Info("API request")
		}

		// 監視系エンドポイント自身は集計対象から除外
		if strings.HasPrefix(entry.Path, "/monitoring") || entry.Path == "/metrics" {
			return
		}
		s.LogRequest(entry)
	}
}

// HourlyCount は1時間ごとのリクエスト数です。
type HourlyCount struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusClassCount counts responses of one status class.
type StatusClassCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointLatency is the mean response time of one path in milliseconds.
type EndpointLatency struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyCount      `json:"requestsOverTime"`
	Endpoints        map[string]int     `json:"endpoints"`
	StatusCodes      []StatusClassCount `json:"statusCodes"`
	AvgResponseTimes []EndpointLatency  `json:"avgResponseTimes"`
	RecentErrors     []LogEntry         `json:"recentErrors"`
}

const maxRecentErrors = 10

var statusClasses = []string{"2xx Success", "4xx Client Error", "5xx Server Error"}

func statusClass(code int) (int, bool) {
	switch {
	case code >= 200 && code < 300:
		return 0, true
	case code >= 400 && code < 500:
		return 1, true
	case code >= 500:
		return 2, true
	}
	return 0, false
}

// GetDashboardData aggregates the entries of the last periodHours hours.
// Hour buckets run oldest first and are aligned to UTC hours.
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)
	currentHour := now.Truncate(time.Hour)

	hourly := make([]HourlyCount, periodHours)
	for i := range hourly {
		hourly[i].Time = now.Add(-time.Duration(periodHours-1-i) * time.Hour).Format("15:00")
	}

	data := DashboardData{
		RequestsOverTime: hourly,
		Endpoints:        make(map[string]int),
		StatusCodes:      make([]StatusClassCount, len(statusClasses)),
		AvgResponseTimes: make([]EndpointLatency, 0),
		RecentErrors:     make([]LogEntry, 0),
	}
	for i, name := range statusClasses {
		data.StatusCodes[i].Name = name
	}

	totals := make(map[string]time.Duration)
	for _, entry := range s.logs {
		if !entry.Timestamp.After(since) {
			continue
		}

		// 何時間前のバケットに入るか
		age := int(currentHour.Sub(entry.Timestamp.UTC().Truncate(time.Hour)) / time.Hour)
		if age >= 0 && age < periodHours {
			hourly[periodHours-1-age].Requests++
		}

		data.Endpoints[entry.Path]++
		totals[entry.Path] += entry.ResponseTime
		if class, ok := statusClass(entry.StatusCode); ok {
			data.StatusCodes[class].Value++
		}
	}

	paths := make([]string, 0, len(totals))
	for path := range totals {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		data.AvgResponseTimes = append(data.AvgResponseTimes, EndpointLatency{
			Endpoint:     path,
			ResponseTime: totals[path].Milliseconds() / int64(data.Endpoints[path]),
		})
	}

	// 新しい順に5xxを最大10件
	for i := len(s.logs) - 1; i >= 0 && len(data.RecentErrors) < maxRecentErrors; i-- {
		entry := s.logs[i]
		if entry.StatusCode >= 500 && entry.Timestamp.After(since) {
			data.RecentErrors = append(data.RecentErrors, entry)
		}
	}

	return data
}
