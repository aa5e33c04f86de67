package testutil

import (
	"net/http"

	id "driverhub/pkg/domain"
	"driverhub/pkg/requestcontext"
)

// WithUserID injects an authenticated user into the request context,
// simulating what the auth middleware does for valid tokens.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithAdmin marks the request context as admin-authenticated.
func WithAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context()))
}

// WithRequestID injects a request ID into the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
