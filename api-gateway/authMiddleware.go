package main

import (
	"net/http"
	"strings"

	"orbitplan/api-gateway/utils"
	shared "orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"
)

const (
	roleAdmin  = "admin"
	roleMember = "member"
)

// authMiddleware verifies the bearer token and replaces any client supplied
// identity headers with the token's claims.
func authMiddleware(next http.Handler, secret []byte, allowedRoles []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(shared.HeaderUserID)
		r.Header.Del(shared.HeaderIsAdmin)

		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			shared.WriteError(w, shared.NewAuthError("Not authorized. Try login again."))
			return
		}

		claims, err := utils.ValidateToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			logging.Logger.Warnf("Event ID: TOKEN_REJECTED, Description: %s %s: %v", r.Method, r.URL.Path, err)
			shared.WriteError(w, shared.NewAuthError("Not authorized. Try login again."))
			return
		}

		if !contains(allowedRoles, roleOf(claims)) {
			shared.WriteError(w, shared.NewForbiddenError("Not authorized as admin. Try login as admin."))
			return
		}

		shared.SetCaller(r, shared.Caller{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
		next.ServeHTTP(w, r)
	})
}

func roleOf(claims *utils.Claims) string {
	if claims.IsAdmin {
		return roleAdmin
	}
	return roleMember
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
