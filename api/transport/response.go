package transport

// Envelope wraps every API response. Success carries the payload under data;
// failure carries a structured error so the UI can branch on the code without
// parsing messages.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the wire form of a failed request. Details carries optional
// structured context, e.g. per-service health on a degraded health check.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Status: statusSuccess, Data: data}
}

// NewError returns an error envelope.
func NewError(code, message string, details interface{}) Envelope {
	return Envelope{
		Status: statusError,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
