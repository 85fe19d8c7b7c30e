package api

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question" validate:"required,min=3"`
}

// UploadResponse is returned by POST /upload on success.
type UploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
