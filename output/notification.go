package output

import (
	"log"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, user-visible message.
type Notification struct {
	Level       Level
	Title       string
	Description string
	At          time.Time
}

// Notifier fans notifications out to the UI over a buffered channel.
type Notifier struct {
	ch chan Notification
}

func NewNotifier(size int) *Notifier {
	if size < 1 {
		size = 1
	}
	return &Notifier{ch: make(chan Notification, size)}
}

// C returns the channel notifications are delivered on.
func (n *Notifier) C() <-chan Notification {
	return n.ch
}

// Notify never blocks; when the UI falls behind the notification is only logged.
func (n *Notifier) Notify(level Level, title, description string) {
	note := Notification{Level: level, Title: title, Description: description, At: time.Now()}
	log.Printf("notify [%s] %s %s", level, title, description)
	select {
	case n.ch <- note:
	default:
		log.Printf("notify: channel full, dropping %q", title)
	}
}

func (n *Notifier) Info(title, description string)    { n.Notify(LevelInfo, title, description) }
func (n *Notifier) Success(title, description string) { n.Notify(LevelSuccess, title, description) }
func (n *Notifier) Warning(title, description string) { n.Notify(LevelWarning, title, description) }
func (n *Notifier) Error(title, description string)   { n.Notify(LevelError, title, description) }
