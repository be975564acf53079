package maxAPI

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"classBook/database"
	"classBook/services"
)

// maxReportLines keeps a report inside a single message.
const maxReportLines = 60

type pendingKind int

const (
	pendingImport pendingKind = iota + 1
	pendingScheduleEntry
	pendingScheduleRange
	pendingAttendanceRange
)

// pendingInput is what the next plain message or file from a user answers.
type pendingInput struct {
	kind    pendingKind
	classID string
}

// attendanceSetPayload names the student by ID. The ID is hex encoded so the
// payload splits cleanly on underscores whatever the ID holds.
func attendanceSetPayload(classID, date, studentID string, status int) string {
	return fmt.Sprintf("%s%s_%s_%d_%s", prefixAttendanceSet, classID, date, status, hex.EncodeToString([]byte(studentID)))
}

type attendanceMark struct {
	classID   string
	date      time.Time
	studentID string
	status    database.AttendanceStatus
}

// parseAttendanceSet reads the payload back from the right, so class IDs may
// contain underscores.
func parseAttendanceSet(payload string) (attendanceMark, error) {
	rest := strings.TrimPrefix(payload, prefixAttendanceSet)
	parts := strings.Split(rest, "_")
	if rest == payload || len(parts) < 4 {
		return attendanceMark{}, errors.Errorf("invalid attendance payload %q", payload)
	}

	n := len(parts)
	studentID, err := hex.DecodeString(parts[n-1])
	if err != nil || len(studentID) == 0 {
		return attendanceMark{}, errors.Errorf("invalid student in %q", payload)
	}
	statusIdx, err := strconv.Atoi(parts[n-2])
	if err != nil || statusIdx < 0 || statusIdx >= len(database.AttendanceStatuses) {
		return attendanceMark{}, errors.Errorf("invalid attendance status in %q", payload)
	}
	date, err := database.ParseDate(parts[n-3])
	if err != nil {
		return attendanceMark{}, errors.Wrapf(err, "invalid date in %q", payload)
	}
	classID := strings.Join(parts[:n-3], "_")
	if classID == "" {
		return attendanceMark{}, errors.Errorf("missing class in %q", payload)
	}

	return attendanceMark{
		classID:   classID,
		date:      date,
		studentID: string(studentID),
		status:    database.AttendanceStatuses[statusIdx],
	}, nil
}

// parseScheduleInput reads "날짜;교시;진도;특기사항", the note being optional.
func parseScheduleInput(text string) (database.ScheduleEntry, error) {
	parts := strings.SplitN(text, ";", 4)
	if len(parts) < 3 {
		return database.ScheduleEntry{}, &services.ValidationError{Message: scheduleFormatMsg}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if _, err := database.ParseDate(parts[0]); err != nil {
		return database.ScheduleEntry{}, &services.ValidationError{Message: fmt.Sprintf(badDateMsg, parts[0])}
	}
	period, err := strconv.Atoi(parts[1])
	if err != nil || period < 1 || period > 7 {
		return database.ScheduleEntry{}, &services.ValidationError{Message: fmt.Sprintf(badPeriodMsg, parts[1])}
	}
	entry := database.ScheduleEntry{Date: parts[0], Period: period, Content: parts[2]}
	if len(parts) == 4 {
		entry.Note = parts[3]
	}
	return entry, nil
}

// parseRange reads "시작일 종료일", "시작일~종료일" or a single date.
func parseRange(text string) (time.Time, time.Time, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '~' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, time.Time{}, &services.ValidationError{Message: rangeFormatMsg}
	}

	start, err := database.ParseDate(fields[0])
	if err != nil {
		return time.Time{}, time.Time{}, &services.ValidationError{Message: fmt.Sprintf(badDateMsg, fields[0])}
	}
	end := start
	if len(fields) == 2 {
		end, err = database.ParseDate(fields[1])
		if err != nil {
			return time.Time{}, time.Time{}, &services.ValidationError{Message: fmt.Sprintf(badDateMsg, fields[1])}
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, &services.ValidationError{Message: rangeOrderMsg}
	}
	return start, end, nil
}

func formatSubjects(subjects []database.Subject) string {
	if len(subjects) == 0 {
		return noSubjectsMsg
	}

	var sb strings.Builder
	sb.WriteString("📘 **교과 목록**\n\n")
	for _, s := range subjects {
		fmt.Fprintf(&sb, "• %s\n", s.DisplayName())
		if s.PdfURL != "" {
			fmt.Fprintf(&sb, "  [수업 및 평가계획서](%s)\n", s.PdfURL)
		}
	}
	return strings.TrimSpace(sb.String())
}

func formatClasses(classes []database.Class) string {
	if len(classes) == 0 {
		return noClassesMsg
	}

	var sb strings.Builder
	sb.WriteString("🏫 **반 목록**\n\n")
	for _, c := range classes {
		fmt.Fprintf(&sb, "• **%s** · %s\n", c.Name, c.Subject)
		if len(c.Weekdays) > 0 || len(c.Periods) > 0 {
			fmt.Fprintf(&sb, "  %s / %s교시\n", strings.Join(c.Weekdays, ","), joinInts(c.Periods))
		}
	}
	return strings.TrimSpace(sb.String())
}

func formatReport(report *services.Report, start, end time.Time) string {
	title := "📚 **진도 조회**"
	if report.Kind == services.AttendanceReport {
		title = "📋 **출결 조회**"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s ~ %s\n\n", title, database.FormatDate(start), database.FormatDate(end))

	if len(report.Rows) == 0 {
		sb.WriteString(emptyReportMsg)
		return sb.String()
	}

	for i, r := range report.Rows {
		if i == maxReportLines {
			fmt.Fprintf(&sb, "… 외 %d건", len(report.Rows)-maxReportLines)
			break
		}
		switch report.Kind {
		case services.AttendanceReport:
			fmt.Fprintf(&sb, "`%s` %s · %s(%s) · %s", r.Date, r.Class, r.Name, r.StudentID, r.Status)
		default:
			fmt.Fprintf(&sb, "`%s` %s · %d교시 · %s", r.Date, r.Class, r.Period, r.Content)
		}
		if r.Note != "" {
			fmt.Fprintf(&sb, " (%s)", r.Note)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
