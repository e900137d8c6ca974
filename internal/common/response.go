package common

import (
	"encoding/json"
	"net/http"
)

// Result is the envelope every credential endpoint answers with.
type Result struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	JWTToken  string `json:"jwt_token,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Result{IsSuccess: false, Message: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"isSuccess": false, "message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
