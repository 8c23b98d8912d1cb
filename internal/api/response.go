package api

import (
	"encoding/json"
	"net/http"
	"time"

	"f3-nation/regionsync/internal/models/dtos/responses"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	respondWithJSON(w, statusCode, responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	})
}
