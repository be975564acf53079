package services

import (
	"fmt"

	"github.com/pkg/errors"

	"classBook/database"
)

// UserMessage turns an error from the gateway or the services into text that
// can be shown to the user.
func UserMessage(err error) string {
	var verr *ValidationError
	var serr *database.StoreError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrUnknownStudent):
		return "명단에 없는 학생입니다."
	case errors.Is(err, database.ErrStoreUnavailable):
		return "저장소에 연결할 수 없습니다. 잠시 후 다시 시도해 주세요."
	case errors.Is(err, database.ErrWriteRejected):
		if errors.As(err, &serr) && serr.Err != nil {
			return fmt.Sprintf("저장이 거부되었습니다: %v", serr.Err)
		}
		return "저장이 거부되었습니다."
	default:
		return "처리 중 오류가 발생했습니다."
	}
}
