package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                        "/",
		"/metrics":                "/metrics",
		"/v1/auth/login":          "/v1/auth/login",
		"/v1/auth/login?foo=bar":  "/v1/auth/login",
		"/v1/auth/me":             "/v1/auth/me",
		"/healthz?verbose=1":      "/healthz",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
