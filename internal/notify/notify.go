// Package notify carries user-facing notifications from the view-model to
// whatever surface renders them. Components receive a Notifier at
// construction instead of reaching for shared globals.
package notify

import "log/slog"

// Level classifies a notification.
type Level string

// Notification levels.
const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to the Notifier interface.
type Func func(level Level, message string)

// Notify calls f.
func (f Func) Notify(level Level, message string) {
	f(level, message)
}

// Logger is a Notifier that writes notifications to the default slog logger.
type Logger struct{}

// Notify logs the notification at a level matching its severity.
func (Logger) Notify(level Level, message string) {
	switch level {
	case Error:
		slog.Error(message)
	case Warning:
		slog.Warn(message)
	default:
		slog.Info(message)
	}
}

// Recorder is a Notifier that collects notifications, for tests.
type Recorder struct {
	Notifications []Notification
}

// Notification is a single recorded notification.
type Notification struct {
	Level   Level
	Message string
}

// Notify appends the notification to the record.
func (r *Recorder) Notify(level Level, message string) {
	r.Notifications = append(r.Notifications, Notification{Level: level, Message: message})
}

// Last returns the most recent notification, or a zero value if none.
func (r *Recorder) Last() Notification {
	if len(r.Notifications) == 0 {
		return Notification{}
	}
	return r.Notifications[len(r.Notifications)-1]
}
