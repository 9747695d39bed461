package api

import (
	"fmt"

	"github.com/shaiso/atlas/internal/domain"
)

// SyncRequest — запрос на синхронизацию манускрипта.
// Поля — указатели, чтобы отличить отсутствующее поле от пустой строки.
type SyncRequest struct {
	ProjectID *string `json:"project_id"`
	Content   *string `json:"content"`
}

// ToDomain проверяет наличие полей и конвертирует запрос в domain.Manuscript.
func (r SyncRequest) ToDomain() (domain.Manuscript, error) {
	if r.ProjectID == nil {
		return domain.Manuscript{}, fmt.Errorf("%w: missing field `project_id`", domain.ErrInvalidManuscript)
	}
	if r.Content == nil {
		return domain.Manuscript{}, fmt.Errorf("%w: missing field `content`", domain.ErrInvalidManuscript)
	}
	return domain.Manuscript{ProjectID: *r.ProjectID, Content: *r.Content}, nil
}

// SyncResponse — ответ синхронизации.
type SyncResponse struct {
	Status  string `json:"status"`
	TraceID string `json:"trace_id"`
}

// SyncFromDomain конвертирует domain.SyncResult в SyncResponse.
func SyncFromDomain(r domain.SyncResult) SyncResponse {
	return SyncResponse{
		Status:  string(r.Status),
		TraceID: r.TraceID,
	}
}
