// Package subjects manages study subjects owned by user accounts.
package subjects

import "time"

// Subject is a study subject. OwnerID is set at creation from the calling
// principal and never changes.
type Subject struct {
	ID                string
	OwnerID           string
	Subject           string
	Theory            bool
	Revision          bool
	PYQ               bool
	TestSeries        bool
	IsCompleted       bool
	NoOfLectures      int
	LecturesCompleted int
	SubjectStart      time.Time
	SubjectEnd        time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
