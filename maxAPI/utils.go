package maxAPI

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/database"
	"classBook/services"
)

// maxUploadSize bounds a roster download.
const maxUploadSize = 1 << 20

func (b *Bot) findClass(ctx context.Context, classID string) (database.Class, error) {
	classes, err := b.gateway.Classes.List(ctx)
	if err != nil {
		return database.Class{}, err
	}
	for _, c := range classes {
		if c.ID == classID {
			return c, nil
		}
	}
	return database.Class{}, fmt.Errorf("class %s not found", classID)
}

func (b *Bot) downloadFile(ctx context.Context, fileAtt *schemes.FileAttachment) (string, error) {
	fileURL := fileAtt.Payload.Url
	b.logger.Debugf("Downloading file: %s from %s", fileAtt.Filename, fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Errorf("Bad HTTP status when downloading file: %s", resp.Status)
		return "", fmt.Errorf("failed to download file: status %s", resp.Status)
	}

	out, err := os.CreateTemp("", "roster-*.csv")
	if err != nil {
		return "", err
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, maxUploadSize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > maxUploadSize {
		err = &services.ValidationError{Message: fmt.Sprintf(fileTooLargeMsg, maxUploadSize>>10)}
	}
	if err != nil {
		os.Remove(out.Name())
		return "", err
	}

	b.logger.Infof("File saved to: %s", out.Name())
	return out.Name(), nil
}

func extractFileAttachments(attachments []interface{}) []*schemes.FileAttachment {
	fileAttachments := []*schemes.FileAttachment{}
	for _, att := range attachments {
		if fileAtt, ok := att.(*schemes.FileAttachment); ok {
			fileAttachments = append(fileAttachments, fileAtt)
		}
	}
	return fileAttachments
}
