package maxAPI

import (
	"context"
	"fmt"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/services"
)

func (b *Bot) isMessageProcessed(messageID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processedMessages[messageID]
}

func (b *Bot) markMessageProcessed(messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processedMessages[messageID] = true
}

func (b *Bot) cleanupProcessedMessage(messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.processedMessages, messageID)
}

func (b *Bot) setPending(userID int64, p pendingInput) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = p
}

// takePending returns and clears what the user's next message answers.
func (b *Bot) takePending(userID int64) (pendingInput, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[userID]
	delete(b.pending, userID)
	return p, ok
}

func (b *Bot) clearPending(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
}

func (b *Bot) sendKeyboard(ctx context.Context, keyboard *maxbot.Keyboard, userID int64, msg string) {
	_, err := b.MaxAPI.Messages.Send(ctx, maxbot.NewMessage().
		SetUser(userID).
		AddKeyboard(keyboard).
		SetText(msg).SetFormat("markdown"))
	if err != nil && err.Error() != "" {
		b.logger.Errorf("Failed to send keyboard: %v", err)
	}
}

func (b *Bot) sendMessage(ctx context.Context, userID int64, text string) error {
	_, err := b.MaxAPI.Messages.Send(ctx, maxbot.NewMessage().
		SetUser(userID).
		SetText(text).SetFormat("markdown"))
	if err != nil && err.Error() != "" {
		return err
	}
	return nil
}

func (b *Bot) answerWithKeyboard(ctx context.Context, callbackID, text string, keyboard *maxbot.Keyboard) error {
	return b.answerWithKeyboardAndNotification(ctx, callbackID, text, keyboard, "")
}

func (b *Bot) answerWithKeyboardAndNotification(ctx context.Context, callbackID, text string, keyboard *maxbot.Keyboard, notification string) error {
	messageBody := &schemes.NewMessageBody{
		Text:        text,
		Format:      "markdown",
		Attachments: []interface{}{schemes.NewInlineKeyboardAttachmentRequest(keyboard.Build())},
	}

	answer := &schemes.CallbackAnswer{
		Message:      messageBody,
		Notification: notification,
	}

	_, err := b.MaxAPI.Messages.AnswerOnCallback(ctx, callbackID, answer)
	if err != nil && err.Error() != "" {
		return err
	}
	return nil
}

func (b *Bot) answerCallbackWithNotification(ctx context.Context, callbackID, notification string) error {
	answer := &schemes.CallbackAnswer{
		Notification: notification,
	}
	_, err := b.MaxAPI.Messages.AnswerOnCallback(ctx, callbackID, answer)
	if err != nil && err.Error() != "" {
		return err
	}
	return nil
}

// answerError replaces the callback's message with the error and the menu.
func (b *Bot) answerError(ctx context.Context, userID int64, callbackID string, cause error) {
	text := fmt.Sprintf(errorMessage, services.UserMessage(cause)) + "\n\n" + nextActionMessage
	if err := b.answerWithKeyboard(ctx, callbackID, text, GetMainKeyboard(b.MaxAPI)); err != nil {
		b.logger.Errorf("Failed to answer callback for user %d: %v", userID, err)
	}
}
