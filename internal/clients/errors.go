package clients

import (
	"errors"
	"fmt"
)

// APIError — не-2xx ответ удалённого сервиса.
type APIError struct {
	// StatusCode — HTTP-код ответа.
	StatusCode int

	// Method и Path — запрос, на который получен ответ.
	Method string
	Path   string

	// Message — сообщение об ошибке из тела ответа (усечённое).
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsNotFound сообщает, что ресурс отсутствует (404).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRetryable сообщает, что ошибка временная и вызов стоит повторить:
// 5xx либо конфликтные коды 409, 412, 429. Прочие 4xx и транспортные
// ошибки без статус-кода не повторяются.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode >= 500 {
		return true
	}
	switch apiErr.StatusCode {
	case 409, 412, 429:
		return true
	}
	return false
}

// ErrorMessage возвращает сообщение для лога: "Server error: <код>" для
// 5xx, иначе текст ошибки. Формат сохранён для операторских алертов.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return fmt.Sprintf("Server error: %d", apiErr.StatusCode)
	}
	return err.Error()
}
