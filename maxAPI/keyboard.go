package maxAPI

import (
	"fmt"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/database"
)

const (
	btnSubjects         = "📘 교과 목록"
	btnClasses          = "🏫 반 목록"
	btnImportStudents   = "👥 학생 등록 (CSV)"
	btnRecordSchedule   = "✏️ 진도 기록"
	btnShowSchedule     = "📚 진도 조회"
	btnRecordAttendance = "✅ 출결 기록"
	btnShowAttendance   = "📋 출결 조회"
	btnBackToMenu       = "← 메뉴로"

	payloadSubjects         = "subjects"
	payloadClasses          = "classes"
	payloadImportStudents   = "importStudents"
	payloadRecordSchedule   = "recordSchedule"
	payloadShowSchedule     = "showSchedule"
	payloadRecordAttendance = "recordAttendance"
	payloadShowAttendance   = "showAttendance"
	payloadBackToMenu       = "backToMenu"

	prefixImportClass     = "imp_cls_"
	prefixScheduleClass   = "sch_cls_"
	prefixAttendanceClass = "att_cls_"
	prefixAttendanceSet   = "att_set_"
)

func GetMainKeyboard(api *maxbot.Api) *maxbot.Keyboard {
	keyboard := api.Messages.NewKeyboardBuilder()
	keyboard.AddRow().
		AddCallback(btnSubjects, schemes.DEFAULT, payloadSubjects).
		AddCallback(btnClasses, schemes.DEFAULT, payloadClasses)
	keyboard.AddRow().AddCallback(btnImportStudents, schemes.DEFAULT, payloadImportStudents)
	keyboard.AddRow().
		AddCallback(btnRecordSchedule, schemes.POSITIVE, payloadRecordSchedule).
		AddCallback(btnShowSchedule, schemes.DEFAULT, payloadShowSchedule)
	keyboard.AddRow().
		AddCallback(btnRecordAttendance, schemes.POSITIVE, payloadRecordAttendance).
		AddCallback(btnShowAttendance, schemes.DEFAULT, payloadShowAttendance)
	return keyboard
}

func GetBackKeyboard(api *maxbot.Api) *maxbot.Keyboard {
	keyboard := api.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnBackToMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}

// GetClassKeyboard offers one button per class; the class ID follows prefix
// in the payload.
func GetClassKeyboard(api *maxbot.Api, classes []database.Class, prefix string) *maxbot.Keyboard {
	keyboard := api.Messages.NewKeyboardBuilder()
	for _, class := range classes {
		keyboard.AddRow().AddCallback(classLabel(class), schemes.DEFAULT, prefix+class.ID)
	}
	keyboard.AddRow().AddCallback(btnBackToMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}

// GetStatusKeyboard holds one button per attendance status for one student.
func GetStatusKeyboard(api *maxbot.Api, classID, date, studentID string) *maxbot.Keyboard {
	keyboard := api.Messages.NewKeyboardBuilder()
	row := keyboard.AddRow()
	for i, status := range database.AttendanceStatuses {
		intent := schemes.DEFAULT
		switch status {
		case database.StatusPresent:
			intent = schemes.POSITIVE
		case database.StatusAbsent:
			intent = schemes.NEGATIVE
		}
		row.AddCallback(string(status), intent, attendanceSetPayload(classID, date, studentID, i))
	}
	keyboard.AddRow().AddCallback(btnBackToMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}

func classLabel(class database.Class) string {
	if class.Subject == "" {
		return class.Name
	}
	return fmt.Sprintf("%s (%s)", class.Name, class.Subject)
}
