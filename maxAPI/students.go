package maxAPI

import (
	"context"
	"fmt"
	"os"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/services"
)

func (b *Bot) handleImportClassSelected(ctx context.Context, userID int64, callbackID, classID string) error {
	class, err := b.findClass(ctx, classID)
	if err != nil {
		return err
	}

	b.setPending(userID, pendingInput{kind: pendingImport, classID: classID})
	return b.answerWithKeyboard(ctx, callbackID, fmt.Sprintf(sendStudentsFileMsg, class.Name), GetBackKeyboard(b.MaxAPI))
}

func (b *Bot) handleStudentsFile(ctx context.Context, userID int64, classID string, attachments []interface{}) {
	files := extractFileAttachments(attachments)
	switch {
	case len(files) == 0:
		b.setPending(userID, pendingInput{kind: pendingImport, classID: classID})
		if err := b.sendMessage(ctx, userID, fileNotFoundMessage); err != nil {
			b.logger.Errorf("Failed to send message: %v", err)
		}
		return
	case len(files) > 1:
		b.sendFailure(ctx, userID, &services.ValidationError{Message: fmt.Sprintf(multipleFilesMessage, len(files))})
		return
	}

	n, err := b.importStudents(ctx, classID, files[0])
	if err != nil {
		b.logger.Errorf("Failed to import %s into class %s after %d rows: %v", files[0].Filename, classID, n, err)
		b.sendFailure(ctx, userID, err)
		return
	}

	b.logger.Infof("Imported %d students into class %s", n, classID)
	b.sendKeyboard(ctx, GetMainKeyboard(b.MaxAPI), userID, fmt.Sprintf(studentsImportedMsg, n)+"\n\n"+nextActionMessage)
}

func (b *Bot) importStudents(ctx context.Context, classID string, file *schemes.FileAttachment) (int, error) {
	filePath, err := b.downloadFile(ctx, file)
	if err != nil {
		return 0, err
	}
	defer os.Remove(filePath)

	if err := services.ValidateStudentsCSV(filePath); err != nil {
		return 0, err
	}

	return b.importer.ImportFile(ctx, classID, filePath)
}
