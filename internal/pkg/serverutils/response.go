package serverutils

// Response is the envelope used by the user routes and by every error.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   any    `json:"error"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
		Error:   nil,
	}
}

// ErrorResponse repeats the message in "error" so older clients that only read
// that field keep working.
func ErrorResponse(message string, detail any) Response[any] {
	errField := detail
	if errField == nil {
		errField = message
	}
	return Response[any]{
		Success: false,
		Message: message,
		Data:    nil,
		Error:   errField,
	}
}
