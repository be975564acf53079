package maxAPI

import (
	"context"
	"fmt"

	"classBook/services"
)

func (b *Bot) handleScheduleClassSelected(ctx context.Context, userID int64, callbackID, classID string) error {
	class, err := b.findClass(ctx, classID)
	if err != nil {
		return err
	}

	b.setPending(userID, pendingInput{kind: pendingScheduleEntry, classID: classID})
	return b.answerWithKeyboard(ctx, callbackID, fmt.Sprintf(sendScheduleEntryMsg, class.Name), GetBackKeyboard(b.MaxAPI))
}

func (b *Bot) handleScheduleEntryText(ctx context.Context, userID int64, classID, text string) {
	entry, err := parseScheduleInput(text)
	if err != nil {
		// let the user retry without picking the class again
		b.setPending(userID, pendingInput{kind: pendingScheduleEntry, classID: classID})
		b.sendKeyboard(ctx, GetBackKeyboard(b.MaxAPI), userID, fmt.Sprintf(errorMessage, services.UserMessage(err)))
		return
	}

	if _, err := b.gateway.Schedule.Create(ctx, classID, entry); err != nil {
		b.logger.Errorf("Failed to record schedule for class %s: %v", classID, err)
		b.sendFailure(ctx, userID, err)
		return
	}

	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID,
		fmt.Sprintf(scheduleSavedMsg, entry.Date, entry.Period)+"\n\n"+nextActionMessage)
}

func (b *Bot) handleAskRange(ctx context.Context, userID int64, callbackID string, kind pendingKind) error {
	b.setPending(userID, pendingInput{kind: kind})
	return b.answerWithKeyboard(ctx, callbackID, sendRangeMsg, GetBackKeyboard(b.MaxAPI))
}

// handleRangeText builds a report over every class for the entered range.
func (b *Bot) handleRangeText(ctx context.Context, userID int64, kind pendingKind, text string) {
	start, end, err := parseRange(text)
	if err != nil {
		b.setPending(userID, pendingInput{kind: kind})
		b.sendKeyboard(ctx, GetBackKeyboard(b.MaxAPI), userID, fmt.Sprintf(errorMessage, services.UserMessage(err)))
		return
	}

	classes, err := b.gateway.Classes.List(ctx)
	if err != nil {
		b.sendFailure(ctx, userID, err)
		return
	}

	reportKind := services.ScheduleReport
	if kind == pendingAttendanceRange {
		reportKind = services.AttendanceReport
	}

	report, err := b.reports.Build(ctx, reportKind, classes, start, end)
	if err != nil {
		b.logger.Errorf("Failed to build %s report: %v", reportKind, err)
		b.sendFailure(ctx, userID, err)
		return
	}

	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID, formatReport(report, start, end))
}
