package utils

import (
	"net/http"
	"strconv"
)

// Identity headers set by the api-gateway after token verification.
const (
	HeaderUserID  = "User-ID"
	HeaderIsAdmin = "Is-Admin"
)

// Caller is the identity every lifecycle and notification operation acts as.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// Require fails with AuthError when the caller carries no user id.
func (c Caller) Require() error {
	if c.UserID == "" {
		return NewAuthError("User not authenticated")
	}
	return nil
}

// CallerFromRequest reads the forwarded identity headers.
func CallerFromRequest(r *http.Request) (Caller, error) {
	caller := Caller{UserID: r.Header.Get(HeaderUserID)}
	if raw := r.Header.Get(HeaderIsAdmin); raw != "" {
		isAdmin, err := strconv.ParseBool(raw)
		if err != nil {
			return Caller{}, NewAuthError("Invalid %s header", HeaderIsAdmin)
		}
		caller.IsAdmin = isAdmin
	}
	if err := caller.Require(); err != nil {
		return Caller{}, err
	}
	return caller, nil
}

// SetCaller writes the identity headers onto an outgoing or proxied request.
func SetCaller(r *http.Request, caller Caller) {
	r.Header.Set(HeaderUserID, caller.UserID)
	r.Header.Set(HeaderIsAdmin, strconv.FormatBool(caller.IsAdmin))
}
