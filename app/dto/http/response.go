package http

import "github.com/vibast-solutions/ms-go-user/app/types"

const (
	MessageValidationFailed = "Validation failed"
	MessageInvalidBody      = "Invalid request body"
	MessageInternalError    = "Internal Server Error"
	MessageUnauthorized     = "Unauthorized"
	MessageForbidden        = "Forbidden"
)

// Response is the envelope every HTTP endpoint answers with.
type Response struct {
	Data    any                `json:"data"`
	Message string             `json:"message"`
	Errors  []types.FieldError `json:"errors,omitempty"`
}

func Success(data any, message string) Response {
	return Response{Data: data, Message: message}
}

// Message is a success envelope that carries no data.
func Message(message string) Response {
	return Response{Data: nil, Message: message}
}

func Error(message string) Response {
	return Response{Data: nil, Message: message}
}

func ValidationError(fields []types.FieldError) Response {
	return Response{Data: nil, Message: MessageValidationFailed, Errors: fields}
}

type MessageData struct {
	Message string `json:"message"`
}
