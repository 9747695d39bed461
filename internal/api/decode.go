package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shaiso/atlas/internal/domain"
)

// maxBodyBytes — предел размера тела JSON запроса (2 MiB).
const maxBodyBytes = 2 << 20

// requestError — ошибка разбора запроса с HTTP статусом.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

// write отправляет ошибку клиенту.
func (e *requestError) write(w http.ResponseWriter) {
	switch e.status {
	case http.StatusUnsupportedMediaType:
		UnsupportedMediaType(w, e.message)
	case http.StatusRequestEntityTooLarge:
		PayloadTooLarge(w, e.message)
	case http.StatusUnprocessableEntity:
		Unprocessable(w, e.message)
	default:
		BadRequest(w, e.message)
	}
}

// decodeJSON разбирает тело запроса в dst.
//
// Статусы:
//   - 415 — Content-Type не JSON
//   - 413 — тело больше maxBodyBytes
//   - 400 — синтаксически некорректный JSON
//   - 422 — JSON корректен, но не подходит по типам
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *requestError {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		return &requestError{http.StatusUnsupportedMediaType, "expected request with `Content-Type: application/json`"}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return classifyDecodeError(err)
	}

	// Мусор после JSON объекта — тоже синтаксическая ошибка
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &requestError{http.StatusBadRequest, "failed to parse the request body as JSON: trailing characters"}
	}

	return nil
}

func classifyDecodeError(err error) *requestError {
	var (
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		maxSizeErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxSizeErr):
		return &requestError{http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxSizeErr.Limit)}
	case errors.As(err, &typeErr):
		return &requestError{http.StatusUnprocessableEntity, fmt.Sprintf("failed to deserialize the JSON body: %s: invalid type %s", typeErr.Field, typeErr.Value)}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &requestError{http.StatusBadRequest, "failed to parse the request body as JSON: " + err.Error()}
	case errors.Is(err, io.EOF):
		return &requestError{http.StatusBadRequest, "failed to parse the request body as JSON: empty body"}
	default:
		return &requestError{http.StatusBadRequest, "failed to read request body: " + err.Error()}
	}
}

// invalidManuscript превращает ошибку проверки в 422.
func invalidManuscript(err error) *requestError {
	if errors.Is(err, domain.ErrInvalidManuscript) {
		return &requestError{http.StatusUnprocessableEntity, "failed to deserialize the JSON body: " + strings.TrimPrefix(err.Error(), domain.ErrInvalidManuscript.Error()+": ")}
	}
	return &requestError{http.StatusBadRequest, err.Error()}
}

func isJSONContentType(value string) bool {
	if value == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
