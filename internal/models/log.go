package models

import "time"

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// LogEntry is a client or server event stored in the log collection.
type LogEntry struct {
	ID        string                 `json:"id"`
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    string                 `json:"userId,omitempty"`
	Username  string                 `json:"username,omitempty"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	UserCount    int      `json:"userCount"`
	OrderCount   int      `json:"orderCount"`
	MenuCount    int      `json:"menuCount"`
	TotalRevenue float64  `json:"totalRevenue"`
	RecentOrders []*Order `json:"recentOrders"`
}

// LogFilter narrows the admin log listing.
type LogFilter struct {
	UserID string
	Limit  int
}
