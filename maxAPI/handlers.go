package maxAPI

import (
	"context"
	"fmt"
	"strings"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/services"
)

const (
	welcomeMsg  = "안녕하세요, 선생님! 👩‍🏫\n수업 기록 도우미입니다."
	mainMenuMsg = "메뉴를 선택하세요:"

	unknownMessage    = "❓ 이해하지 못한 메시지입니다."
	errorMessage      = "❌ 오류:\n\n%s"
	nextActionMessage = "다음 작업을 선택하세요:"

	selectClassMsg       = "반을 선택하세요:"
	noSubjectsMsg        = "등록된 교과가 없습니다."
	noClassesMsg         = "등록된 반이 없습니다."
	noClassesForMenuMsg  = "먼저 반을 등록해 주세요."
	emptyReportMsg       = "해당 기간의 기록이 없습니다."
	fileNotFoundMessage  = "파일을 찾을 수 없습니다. CSV 파일을 보내 주세요."
	fileTooLargeMsg      = "파일이 너무 큽니다. %dKB 이하의 CSV 파일을 보내 주세요."
	multipleFilesMessage = "파일 %d개를 보냈습니다. CSV 파일은 한 번에 하나만 보내 주세요."
	sendStudentsFileMsg  = "**%s** 학생 명단 파일(.csv)을 보내 주세요.\n\n형식: `학번,이름` 한 줄에 한 명\n첫 줄의 머리글(예: `id,name`, `학번,이름`)은 건너뜁니다."
	studentsImportedMsg  = "✅ 학생 %d명을 등록했습니다."

	sendScheduleEntryMsg = "**%s** 진도를 입력하세요.\n\n형식: `날짜;교시;진도;특기사항`\n예: `2024-03-04;1;분수의 덧셈;준비물 지참`"
	scheduleSavedMsg     = "✅ 진도를 기록했습니다: %s %d교시"
	sendRangeMsg         = "조회 기간을 입력하세요.\n\n형식: `시작일 종료일`\n예: `2024-03-01 2024-03-31`"

	scheduleFormatMsg = "형식이 올바르지 않습니다. `날짜;교시;진도;특기사항` 형식으로 입력해 주세요."
	badDateMsg        = "날짜 %q 를 읽을 수 없습니다. YYYY-MM-DD 형식으로 입력해 주세요."
	badPeriodMsg      = "교시 %q 가 올바르지 않습니다. 1에서 7 사이의 숫자를 입력해 주세요."
	rangeFormatMsg    = "기간 형식이 올바르지 않습니다. `시작일 종료일` 형식으로 입력해 주세요."
	rangeOrderMsg     = "시작일이 종료일보다 늦습니다."
)

func (b *Bot) handleBotStarted(ctx context.Context, u *schemes.BotStartedUpdate) {
	userID := u.User.UserId
	b.clearPending(userID)
	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID, welcomeMsg+"\n\n"+mainMenuMsg)
}

func (b *Bot) handleMessageCreated(ctx context.Context, u *schemes.MessageCreatedUpdate) {
	userID := u.Message.Sender.UserId
	messageID := u.Message.Body.Mid

	if b.isMessageProcessed(messageID) {
		b.logger.Debugf("Message %s already processed, skipping", messageID)
		return
	}

	b.markMessageProcessed(messageID)
	defer b.cleanupProcessedMessage(messageID)

	pending, ok := b.takePending(userID)
	if !ok {
		b.handleUnexpectedMessage(ctx, userID)
		return
	}

	attachments := u.Message.Body.Attachments
	text := strings.TrimSpace(u.Message.Body.Text)

	switch pending.kind {
	case pendingImport:
		b.handleStudentsFile(ctx, userID, pending.classID, attachments)
	case pendingScheduleEntry:
		b.handleScheduleEntryText(ctx, userID, pending.classID, text)
	case pendingScheduleRange, pendingAttendanceRange:
		b.handleRangeText(ctx, userID, pending.kind, text)
	default:
		b.handleUnexpectedMessage(ctx, userID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, u *schemes.MessageCallbackUpdate) {
	userID := u.Callback.User.UserId
	callbackID := u.Callback.CallbackID
	payload := u.Callback.Payload

	messageID := ""
	if u.Message != nil {
		messageID = u.Message.Body.Mid
	}
	if messageID != "" {
		b.mu.Lock()
		b.lastMessageID[userID] = messageID
		b.mu.Unlock()
	}

	b.logger.Debugf("Callback received: payload=%s, callbackID=%s, userID=%d, messageID=%s",
		payload, callbackID, userID, messageID)

	var err error
	switch {
	case payload == payloadSubjects:
		err = b.handleShowSubjects(ctx, userID, callbackID)
	case payload == payloadClasses:
		err = b.handleShowClasses(ctx, userID, callbackID)
	case payload == payloadImportStudents:
		err = b.handleChooseClass(ctx, userID, callbackID, prefixImportClass)
	case payload == payloadRecordSchedule:
		err = b.handleChooseClass(ctx, userID, callbackID, prefixScheduleClass)
	case payload == payloadRecordAttendance:
		err = b.handleChooseClass(ctx, userID, callbackID, prefixAttendanceClass)
	case payload == payloadShowSchedule:
		err = b.handleAskRange(ctx, userID, callbackID, pendingScheduleRange)
	case payload == payloadShowAttendance:
		err = b.handleAskRange(ctx, userID, callbackID, pendingAttendanceRange)
	case payload == payloadBackToMenu:
		err = b.handleBackToMenu(ctx, userID, callbackID)
	case strings.HasPrefix(payload, prefixImportClass):
		err = b.handleImportClassSelected(ctx, userID, callbackID, strings.TrimPrefix(payload, prefixImportClass))
	case strings.HasPrefix(payload, prefixScheduleClass):
		err = b.handleScheduleClassSelected(ctx, userID, callbackID, strings.TrimPrefix(payload, prefixScheduleClass))
	case strings.HasPrefix(payload, prefixAttendanceClass):
		err = b.handleAttendanceClassSelected(ctx, userID, callbackID, strings.TrimPrefix(payload, prefixAttendanceClass))
	case strings.HasPrefix(payload, prefixAttendanceSet):
		err = b.handleAttendanceMark(ctx, userID, callbackID, payload)
	default:
		b.logger.Warnf("Unknown callback: %s", payload)
		return
	}

	if err != nil {
		b.logger.Errorf("Callback %s for user %d failed: %v", payload, userID, err)
		b.answerError(ctx, userID, callbackID, err)
	}
}

func (b *Bot) handleBackToMenu(ctx context.Context, userID int64, callbackID string) error {
	b.clearPending(userID)
	return b.answerWithKeyboard(ctx, callbackID, mainMenuMsg, GetMainKeyboard(b.MaxAPI))
}

func (b *Bot) handleChooseClass(ctx context.Context, userID int64, callbackID, prefix string) error {
	b.clearPending(userID)

	classes, err := b.gateway.Classes.List(ctx)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		return b.answerCallbackWithNotification(ctx, callbackID, noClassesForMenuMsg)
	}

	return b.answerWithKeyboard(ctx, callbackID, selectClassMsg, GetClassKeyboard(b.MaxAPI, classes, prefix))
}

func (b *Bot) handleUnexpectedMessage(ctx context.Context, userID int64) {
	b.clearPending(userID)
	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID, unknownMessage+"\n\n"+mainMenuMsg)
}

// sendFailure reports err as a new message and brings the menu back.
func (b *Bot) sendFailure(ctx context.Context, userID int64, err error) {
	if err := b.sendMessage(ctx, userID, fmt.Sprintf(errorMessage, services.UserMessage(err))); err != nil {
		b.logger.Errorf("Failed to send error message: %v", err)
	}
	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID, nextActionMessage)
}
