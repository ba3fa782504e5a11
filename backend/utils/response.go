package utils

import (
	"encoding/json"
	"net/http"

	"orbitplan/backend/utils/logging"
)

// ErrorBody is the envelope of every failed request.
type ErrorBody struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: Failed to encode response: %v", err)
	}
}

// WriteError writes {status:false, message} for err. Server-side failures are
// logged with their cause and answered with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %v", err)
	} else {
		logging.Logger.Warnf("Event ID: REQUEST_REJECTED, Description: %d %s", status, message)
	}
	WriteJSON(w, status, ErrorBody{Status: false, Message: message})
}

// Message is the envelope of a successful request that carries no payload.
type Message struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// WriteMessage writes {status:true, message}.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Message{Status: true, Message: message})
}
