package response

// Response is the success envelope of every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope. Code is the machine-readable error kind.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func SuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func MessageResponse(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

func Error(code, msg string, details any) ErrorResponse {
	return ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	}
}
