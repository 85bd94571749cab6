package resp

const (
	CodeBadRequest    = "bad_request"
	CodeInternalError = "internal_error"
	CodeAccepted      = "accepted"
	CodeOK            = "ok"
)
