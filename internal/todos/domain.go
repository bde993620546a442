// Package todos manages scheduled study tasks.
package todos

import "time"

// Status is a todo's lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusDone       Status = "done"
	StatusInProgress Status = "inprogress"
	StatusBacklog    Status = "backlog"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusTodo, StatusDone, StatusInProgress, StatusBacklog:
		return Status(raw), true
	}
	return "", false
}

// Slot is the part of day a todo is scheduled in.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotNight     Slot = "night"
)

// ParseSlot validates a raw slot string.
func ParseSlot(raw string) (Slot, bool) {
	switch Slot(raw) {
	case SlotMorning, SlotAfternoon, SlotNight:
		return Slot(raw), true
	}
	return "", false
}

// DateLayout is the wire format for todo dates.
const DateLayout = "2006-01-02"

// Todo is a scheduled task. SubjectID is a weak reference; the todo does
// not manage the subject's lifecycle. OwnerID is set at creation and never
// changes.
type Todo struct {
	ID          string
	OwnerID     string
	SubjectID   string
	Task        string
	ScheduledIn Slot
	Date        string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
