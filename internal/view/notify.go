package view

import "go.uber.org/zap"

// Level is the severity of a Notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is a transient message for the user (a toast).
type Notification struct {
	Level   Level
	Message string
}

// Notifier delivers notifications to the user, e.g. as a toast or a status line.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier logs notifications. It backs views that have no toast surface.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs errors at warn level and everything else at info.
func (n LogNotifier) Notify(note Notification) {
	if note.Level == LevelError {
		n.Logger.Warn(note.Message, zap.String("notification", note.Level.String()))
		return
	}
	n.Logger.Info(note.Message, zap.String("notification", note.Level.String()))
}
