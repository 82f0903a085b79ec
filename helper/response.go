package helper

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// ToastDuration is how long the shell keeps a toast on screen, in ms.
const ToastDuration = 3000

// WriteJSON writes data as JSON with the given status. Data that cannot be
// encoded becomes a 500 instead of an empty body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Println("[http] failed to encode response:", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// WriteErrorJSON writes {"error": message}.
func WriteErrorJSON(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// StatusOf maps err to an HTTP status. Errors that know their status
// implement HTTPStatus; everything else is a 500.
func StatusOf(err error) int {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// WriteError writes err with the status from StatusOf.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorJSON(w, StatusOf(err), err.Error())
}

type Toast struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	DismissMs int    `json:"dismissMs"`
}

func SuccessToast(msg string) *Toast {
	return &Toast{Kind: "success", Message: msg, DismissMs: ToastDuration}
}

func ErrorToast(err error) *Toast {
	return &Toast{Kind: "error", Message: err.Error(), DismissMs: ToastDuration}
}
