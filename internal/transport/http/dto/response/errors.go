package response

var (
	ErrAuthenticationRequired = ErrorResponse{
		Error: "authentication required",
		Code:  "authentication_error",
	}

	ErrSuperAdminRequired = ErrorResponse{
		Error: "superadmin role required",
		Code:  "authorization_error",
	}

	ErrTooManyRequests = ErrorResponse{
		Error: "too many requests, please try again later",
		Code:  "too_many_requests",
	}
)
