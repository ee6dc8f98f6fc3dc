package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Basic dXNlcjpwdw==", "", false},
		{"Bearer one two", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	router, _, codec := newTestRouter(t)

	registerTestUser(t, router, "a@x.com", "a", "pw1")
	signed, err := codec.Issue("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got identity
	var present bool
	handler := router.authenticate(func(_ http.ResponseWriter, req *http.Request) {
		got, present = identityFromContext(req.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler(httptest.NewRecorder(), req)

	if !present {
		t.Fatalf("expected identity in context")
	}
	if got.Email != "a@x.com" || got.UserID == "" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestAuthenticateNeverAborts(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		var called bool
		handler := router.authenticate(func(_ http.ResponseWriter, req *http.Request) {
			called = true
			if _, ok := identityFromContext(req.Context()); ok {
				t.Errorf("header %q: expected anonymous request", header)
			}
		})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)

		if !called {
			t.Fatalf("header %q: handler must run even without a verified caller", header)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: unexpected status %d", header, rec.Code)
		}
	}
}

func TestAuthenticateUnknownSubjectIsAnonymous(t *testing.T) {
	router, _, codec := newTestRouter(t)

	// Token for an account that no longer exists.
	signed, err := codec.Issue("deleted@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	handler := router.authenticate(func(_ http.ResponseWriter, req *http.Request) {
		if _, ok := identityFromContext(req.Context()); ok {
			t.Errorf("expected anonymous request for unknown subject")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler(httptest.NewRecorder(), req)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	router, _, _ := newTestRouter(t)

	handler := router.requireAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run for anonymous request")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
