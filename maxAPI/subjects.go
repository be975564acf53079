package maxAPI

import (
	"context"
)

func (b *Bot) handleShowSubjects(ctx context.Context, _ int64, callbackID string) error {
	subjects, err := b.gateway.Subjects.List(ctx)
	if err != nil {
		return err
	}
	return b.answerWithKeyboard(ctx, callbackID, formatSubjects(subjects), GetBackKeyboard(b.MaxAPI))
}

func (b *Bot) handleShowClasses(ctx context.Context, _ int64, callbackID string) error {
	classes, err := b.gateway.Classes.List(ctx)
	if err != nil {
		return err
	}
	return b.answerWithKeyboard(ctx, callbackID, formatClasses(classes), GetBackKeyboard(b.MaxAPI))
}
