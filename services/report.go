package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"classBook/database"
	"classBook/logger"
)

type ReportKind int

const (
	ScheduleReport ReportKind = iota
	AttendanceReport
)

func (k ReportKind) String() string {
	switch k {
	case ScheduleReport:
		return "schedule"
	case AttendanceReport:
		return "attendance"
	default:
		return fmt.Sprintf("ReportKind(%d)", int(k))
	}
}

// Columns are the table headings for the kind.
func (k ReportKind) Columns() []string {
	if k == AttendanceReport {
		return []string{"반", "날짜", "학번", "이름", "출결", "특기사항"}
	}
	return []string{"반", "날짜", "교시", "진도", "특기사항"}
}

// Cells lays a row out in the order of Columns.
func (k ReportKind) Cells(r Row) []interface{} {
	if k == AttendanceReport {
		return []interface{}{r.Class, r.Date, r.StudentID, r.Name, string(r.Status), r.Note}
	}
	return []interface{}{r.Class, r.Date, r.Period, r.Content, r.Note}
}

// Row is one report line: the class name joined with one entry's fields.
// Schedule rows leave the student fields empty, attendance rows the lesson ones.
type Row struct {
	Class string
	Date  string

	Period  int
	Content string

	StudentID string
	Name      string
	Status    database.AttendanceStatus

	Note string

	day   time.Time
	dated bool
}

type Report struct {
	Kind ReportKind
	Rows []Row
	// Skipped counts entries left out because their date did not parse.
	Skipped int
}

// ParseError describes a stored entry whose date is not YYYY-MM-DD.
type ParseError struct {
	Class   string
	EntryID string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("class %s entry %s: malformed date %q: %v", e.Class, e.EntryID, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type ScheduleLister interface {
	List(ctx context.Context, classID string) ([]database.ScheduleEntry, error)
}

type AttendanceLister interface {
	List(ctx context.Context, classID string) ([]database.AttendanceEntry, error)
}

type ReportBuilder struct {
	schedule   ScheduleLister
	attendance AttendanceLister
	log        *logger.Logger
}

func NewReportBuilder(schedule ScheduleLister, attendance AttendanceLister, log *logger.Logger) *ReportBuilder {
	if log == nil {
		log = logger.GetInstance()
	}
	return &ReportBuilder{schedule: schedule, attendance: attendance, log: log}
}

// Build joins every class's entries of the given kind against [start, end],
// both ends inclusive and compared as calendar dates.
func (b *ReportBuilder) Build(ctx context.Context, kind ReportKind, classes []database.Class, start, end time.Time) (*Report, error) {
	report := &Report{Kind: kind, Rows: []Row{}}

	start, end = calendarDay(start), calendarDay(end)
	if len(classes) == 0 || start.After(end) {
		return report, nil
	}

	for _, class := range classes {
		var (
			rows []Row
			err  error
		)
		switch kind {
		case ScheduleReport:
			rows, err = b.scheduleRows(ctx, class)
		case AttendanceReport:
			rows, err = b.attendanceRows(ctx, class)
		default:
			return nil, fmt.Errorf("unknown report kind %v", kind)
		}
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			if !row.dated {
				report.Skipped++
				continue
			}
			if row.day.Before(start) || row.day.After(end) {
				continue
			}
			report.Rows = append(report.Rows, row)
		}
	}

	sortRows(kind, report.Rows)

	if report.Skipped > 0 {
		b.log.Warnf("%s report: %d entries skipped for malformed dates", kind, report.Skipped)
	}
	return report, nil
}

func (b *ReportBuilder) scheduleRows(ctx context.Context, class database.Class) ([]Row, error) {
	entries, err := b.schedule.List(ctx, class.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		day, ok := b.entryDay(class, e.ID, e.Date)
		rows = append(rows, Row{
			Class:   class.Name,
			Date:    e.Date,
			Period:  e.Period,
			Content: e.Content,
			Note:    e.Note,
			day:     day,
			dated:   ok,
		})
	}
	return rows, nil
}

func (b *ReportBuilder) attendanceRows(ctx context.Context, class database.Class) ([]Row, error) {
	entries, err := b.attendance.List(ctx, class.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		day, ok := b.entryDay(class, e.ID, e.Date)
		rows = append(rows, Row{
			Class:     class.Name,
			Date:      e.Date,
			StudentID: e.StudentID,
			Name:      e.Name,
			Status:    e.Status,
			Note:      e.Note,
			day:       day,
			dated:     ok,
		})
	}
	return rows, nil
}

func (b *ReportBuilder) entryDay(class database.Class, entryID, value string) (time.Time, bool) {
	day, err := database.ParseDate(value)
	if err != nil {
		b.log.Warn((&ParseError{Class: class.Name, EntryID: entryID, Value: value, Err: err}).Error())
		return time.Time{}, false
	}
	return day, true
}

func sortRows(kind ReportKind, rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.day.Equal(b.day) {
			return a.day.Before(b.day)
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if kind == AttendanceReport {
			return a.Name < b.Name
		}
		return false
	})
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
