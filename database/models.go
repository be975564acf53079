package database

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// SubjectNames are the subject labels a Subject may carry.
var SubjectNames = []string{"국어", "도덕", "사회", "수학", "과학", "체육", "실과", "음악", "미술", "영어"}

// Weekdays are the school days a Class may meet on.
var Weekdays = []string{"월", "화", "수", "목", "금"}

type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "출석"
	StatusLate       AttendanceStatus = "지각"
	StatusEarlyLeave AttendanceStatus = "조퇴"
	StatusAbsent     AttendanceStatus = "결석"
)

var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusLate, StatusEarlyLeave, StatusAbsent}

type Subject struct {
	ID       string `json:"-"`
	Name     string `json:"name" validate:"required,oneof=국어 도덕 사회 수학 과학 체육 실과 음악 미술 영어"`
	Year     int    `json:"year" validate:"required,min=1"`
	Semester int    `json:"semester" validate:"oneof=1 2"`
	PdfURL   string `json:"pdf_url"`
}

// DisplayName is the label classes store as their subject reference.
func (s Subject) DisplayName() string {
	return fmt.Sprintf("%d년 %d학기 - %s", s.Year, s.Semester, s.Name)
}

type Class struct {
	ID       string   `json:"-"`
	Subject  string   `json:"subject" validate:"required"`
	Name     string   `json:"class" validate:"required"`
	Weekdays []string `json:"weekdays" validate:"unique,dive,oneof=월 화 수 목 금"`
	Periods  []int    `json:"periods" validate:"unique,dive,min=1,max=7"`
}

type Student struct {
	ID        string `json:"-"`
	StudentID string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

type ScheduleEntry struct {
	ID      string `json:"-"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Period  int    `json:"period" validate:"min=1,max=7"`
	Content string `json:"content"`
	Note    string `json:"note"`
}

type AttendanceEntry struct {
	ID        string           `json:"-"`
	StudentID string           `json:"student_id" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Date      string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=출석 지각 조퇴 결석"`
	Note      string           `json:"note"`
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a stored ISO calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func ParseStatus(s string) (AttendanceStatus, bool) {
	for _, st := range AttendanceStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Subject) fields() Fields {
	return Fields{
		"name":     s.Name,
		"year":     s.Year,
		"semester": s.Semester,
		"pdf_url":  s.PdfURL,
	}
}

func subjectFromDocument(doc Document) Subject {
	return Subject{
		ID:       doc.ID,
		Name:     stringField(doc.Fields, "name"),
		Year:     intField(doc.Fields, "year"),
		Semester: intField(doc.Fields, "semester"),
		PdfURL:   stringField(doc.Fields, "pdf_url"),
	}
}

func (c Class) fields() Fields {
	weekdays := c.Weekdays
	if weekdays == nil {
		weekdays = []string{}
	}
	periods := c.Periods
	if periods == nil {
		periods = []int{}
	}
	return Fields{
		"subject":  c.Subject,
		"class":    c.Name,
		"weekdays": weekdays,
		"periods":  periods,
	}
}

func classFromDocument(doc Document) Class {
	return Class{
		ID:       doc.ID,
		Subject:  stringField(doc.Fields, "subject"),
		Name:     stringField(doc.Fields, "class"),
		Weekdays: stringsField(doc.Fields, "weekdays"),
		Periods:  intsField(doc.Fields, "periods"),
	}
}

func (s Student) fields() Fields {
	return Fields{
		"id":   s.StudentID,
		"name": s.Name,
	}
}

func studentFromDocument(doc Document) Student {
	return Student{
		ID:        doc.ID,
		StudentID: stringField(doc.Fields, "id"),
		Name:      stringField(doc.Fields, "name"),
	}
}

func (e ScheduleEntry) fields() Fields {
	return Fields{
		"date":    e.Date,
		"period":  e.Period,
		"content": e.Content,
		"note":    e.Note,
	}
}

func scheduleEntryFromDocument(doc Document) ScheduleEntry {
	return ScheduleEntry{
		ID:      doc.ID,
		Date:    stringField(doc.Fields, "date"),
		Period:  intField(doc.Fields, "period"),
		Content: stringField(doc.Fields, "content"),
		Note:    stringField(doc.Fields, "note"),
	}
}

func (e AttendanceEntry) fields() Fields {
	return Fields{
		"student_id": e.StudentID,
		"name":       e.Name,
		"date":       e.Date,
		"status":     string(e.Status),
		"note":       e.Note,
	}
}

func attendanceEntryFromDocument(doc Document) AttendanceEntry {
	return AttendanceEntry{
		ID:        doc.ID,
		StudentID: stringField(doc.Fields, "student_id"),
		Name:      stringField(doc.Fields, "name"),
		Date:      stringField(doc.Fields, "date"),
		Status:    AttendanceStatus(stringField(doc.Fields, "status")),
		Note:      stringField(doc.Fields, "note"),
	}
}
