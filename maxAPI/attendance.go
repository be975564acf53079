package maxAPI

import (
	"context"
	"fmt"

	"classBook/database"
)

const (
	noStudentsMsg      = "이 반에 등록된 학생이 없습니다."
	markStudentMsg     = "✅ **%s** 출결 기록 (%s)\n\n%d/%d · **%s** (%s)\n출결을 선택하세요:"
	attendanceDoneMsg  = "✅ **%s** %s 출결 기록을 마쳤습니다. (%d명)"
	attendanceSavedMsg = "%s: %s"
)

func (b *Bot) handleAttendanceClassSelected(ctx context.Context, _ int64, callbackID, classID string) error {
	class, err := b.findClass(ctx, classID)
	if err != nil {
		return err
	}
	students, err := b.gateway.Students.List(ctx, classID)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return b.answerCallbackWithNotification(ctx, callbackID, noStudentsMsg)
	}

	date := database.FormatDate(b.today())
	return b.showAttendanceStudent(ctx, callbackID, class, students, date, 0, "")
}

// handleAttendanceMark stores one student's status and moves on to the
// student after them in a fresh roster listing.
func (b *Bot) handleAttendanceMark(ctx context.Context, userID int64, callbackID, payload string) error {
	mark, err := parseAttendanceSet(payload)
	if err != nil {
		return err
	}

	class, err := b.findClass(ctx, mark.classID)
	if err != nil {
		return err
	}
	if _, err := b.recorder.Submit(ctx, mark.classID, mark.studentID, mark.date, mark.status, ""); err != nil {
		return err
	}
	b.logger.Infof("User %d marked %s %s as %s in class %s", userID, mark.studentID, database.FormatDate(mark.date), mark.status, mark.classID)

	students, err := b.gateway.Students.List(ctx, mark.classID)
	if err != nil {
		return err
	}
	next := len(students)
	name := mark.studentID
	for i, s := range students {
		if s.StudentID == mark.studentID {
			next, name = i+1, s.Name
			break
		}
	}

	notification := fmt.Sprintf(attendanceSavedMsg, name, mark.status)
	return b.showAttendanceStudent(ctx, callbackID, class, students, database.FormatDate(mark.date), next, notification)
}

func (b *Bot) showAttendanceStudent(ctx context.Context, callbackID string, class database.Class, students []database.Student, date string, index int, notification string) error {
	if index >= len(students) {
		text := fmt.Sprintf(attendanceDoneMsg, class.Name, date, len(students)) + "\n\n" + nextActionMessage
		return b.answerWithKeyboardAndNotification(ctx, callbackID, text, GetMainKeyboard(b.MaxAPI), notification)
	}

	student := students[index]
	text := fmt.Sprintf(markStudentMsg, class.Name, date, index+1, len(students), student.Name, student.StudentID)
	return b.answerWithKeyboardAndNotification(ctx, callbackID, text, GetStatusKeyboard(b.MaxAPI, class.ID, date, student.StudentID), notification)
}
