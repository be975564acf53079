package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"classBook/database"
)

var ErrUnknownStudent = errors.New("student is not on the class roster")

type RosterLister interface {
	List(ctx context.Context, classID string) ([]database.Student, error)
}

type AttendanceWriter interface {
	Create(ctx context.Context, classID string, entry database.AttendanceEntry) (string, error)
}

// AttendanceRecorder records one attendance mark per call, copying the
// student's name from the roster onto the entry.
type AttendanceRecorder struct {
	roster     RosterLister
	attendance AttendanceWriter
}

func NewAttendanceRecorder(roster RosterLister, attendance AttendanceWriter) *AttendanceRecorder {
	return &AttendanceRecorder{roster: roster, attendance: attendance}
}

func (r *AttendanceRecorder) Submit(ctx context.Context, classID, studentID string, date time.Time, status database.AttendanceStatus, note string) (string, error) {
	students, err := r.roster.List(ctx, classID)
	if err != nil {
		return "", err
	}

	for _, s := range students {
		if s.StudentID == studentID {
			return r.SubmitFor(ctx, classID, s, date, status, note)
		}
	}
	return "", errors.Wrapf(ErrUnknownStudent, "class %s student %s", classID, studentID)
}

// SubmitFor records a mark for a student the caller already looked up.
func (r *AttendanceRecorder) SubmitFor(ctx context.Context, classID string, student database.Student, date time.Time, status database.AttendanceStatus, note string) (string, error) {
	return r.attendance.Create(ctx, classID, database.AttendanceEntry{
		StudentID: student.StudentID,
		Name:      student.Name,
		Date:      database.FormatDate(date),
		Status:    status,
		Note:      note,
	})
}
