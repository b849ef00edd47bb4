package httpapi

// Result is the response envelope for every JSON endpoint.
// - type: 'success' | 'error'
// - result: payload, or field errors on validation failures
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailFields reports a validation failure with per-field errors so the
// presentation layer can redisplay the form.
func FailFields(fields map[string]string) Result[map[string]string] {
	return Result[map[string]string]{Code: ResultError, Type: "error", Message: "validation failed", Result: fields}
}
