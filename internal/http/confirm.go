package http

import (
	"net/http"
	"strings"
)

// QueryConfirmer answers yes when the request carries confirm=true in its
// query string.
type QueryConfirmer struct{ r *http.Request }

func (c QueryConfirmer) Confirm(string) bool {
	return isYes(c.r.URL.Query().Get("confirm"))
}

// FormConfirmer reads confirm from the posted form. The page asks the user
// before submitting.
type FormConfirmer struct{ r *http.Request }

func (c FormConfirmer) Confirm(string) bool {
	return isYes(c.r.FormValue("confirm"))
}

func isYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true
	}
	return false
}
