package authkit

import (
	"context"
	"testing"
)

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := PrincipalFromContext(ctx); ok {
		t.Fatal("expected no principal on a fresh context")
	}

	p := Principal{ID: "u1", Email: "a@b.com", Name: "Ada"}
	ctx = WithPrincipal(ctx, p)

	got, ok := PrincipalFromContext(ctx)
	if !ok || got != p {
		t.Fatalf("expected %+v, got %+v (ok=%v)", p, got, ok)
	}
}

func TestRequestMetadataContext(t *testing.T) {
	ctx := context.Background()
	if ip := clientIPFromContext(ctx); ip != "" {
		t.Fatalf("expected empty ip, got %q", ip)
	}

	ctx = WithClientIP(ctx, "203.0.113.7")
	ctx = WithUserAgent(ctx, "curl/8.0")

	if ip := clientIPFromContext(ctx); ip != "203.0.113.7" {
		t.Fatalf("unexpected ip %q", ip)
	}
	if ua := userAgentFromContext(ctx); ua != "curl/8.0" {
		t.Fatalf("unexpected user agent %q", ua)
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrUnauthorized, auditErrUnauthorized},
		{ErrAccessDenied, auditErrAccessDenied},
		{ErrUserNotFound, auditErrUserNotFound},
		{ErrStoreUnavailable, auditErrUnavailable},
		{context.DeadlineExceeded, auditErrInternal},
	}

	for _, tc := range cases {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
