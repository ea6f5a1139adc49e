package admin

import "net/http"

// Credential applies authentication to an outgoing request.
type Credential interface {
	Apply(req *http.Request)
}

// NoAuth sends requests unauthenticated. Useful only in tests.
type NoAuth struct{}

func (a NoAuth) Apply(req *http.Request) {}

// BearerToken authenticates with a bearer access token obtained out of
// band (the interactive sign-in flow is a host concern, not ours).
type BearerToken struct {
	Token string
}

// Apply adds the Authorization header to the request.
func (a BearerToken) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}
