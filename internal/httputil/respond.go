// Package httputil holds the JSON response helpers shared by all module
// handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
)

// JSON writes body as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Error writes err as a structured error response. Internal errors are
// logged with their cause; the client only sees the generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	JSON(w, apperror.Status(appErr), map[string]interface{}{"error": appErr})
}
