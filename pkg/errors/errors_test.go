package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataMapping(t *testing.T) {
	cases := map[Code]struct {
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		CodeValidation:    {status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		CodeUnauthorized:  {status: http.StatusUnauthorized, publicMsg: "authentication required"},
		CodeForbidden:     {status: http.StatusForbidden, publicMsg: "access denied"},
		CodeNotFound:      {status: http.StatusNotFound, publicMsg: "resource not found"},
		CodeConflict:      {status: http.StatusConflict, publicMsg: "conflict detected"},
		CodeStateConflict: {status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		CodeRateLimit:     {status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		CodeInternal:      {status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		CodeDependency:    {status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for code, want := range cases {
		t.Run(string(code), func(t *testing.T) {
			meta := MetadataFor(code)
			if meta.HTTPStatus != want.status {
				t.Errorf("status = %d, want %d", meta.HTTPStatus, want.status)
			}
			if meta.PublicMessage != want.publicMsg {
				t.Errorf("public message = %q, want %q", meta.PublicMessage, want.publicMsg)
			}
			if meta.Retryable != want.retryable {
				t.Errorf("retryable = %v, want %v", meta.Retryable, want.retryable)
			}
			if meta.DetailsAllowed != want.detailsOK {
				t.Errorf("details allowed = %v, want %v", meta.DetailsAllowed, want.detailsOK)
			}
		})
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	if got := MetadataFor("NO_SUCH_CODE").HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code mapped to %d, want 500", got)
	}
}

func TestNewAndWithDetails(t *testing.T) {
	err := New(CodeValidation, "missing title")
	if err.Code() != CodeValidation || err.Message() != "missing title" {
		t.Fatalf("unexpected error %v", err)
	}
	if err.Details() != nil {
		t.Fatal("fresh error should carry no details")
	}
	err.WithDetails(map[string]string{"field": "title"})
	if err.Details() == nil {
		t.Fatal("details were dropped")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDependency, cause, "load product")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("cause lost from chain")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("code = %s, want %s", wrapped.Code(), CodeDependency)
	}

	// Wrapping a nil cause degrades to a plain error.
	if got := Wrap(CodeConflict, nil, "no cause"); got.Unwrap() != nil {
		t.Fatal("nil cause should leave Unwrap empty")
	}
}

func TestAs(t *testing.T) {
	typed := New(CodeForbidden, "admin only")
	if got := As(typed); got == nil || got.Code() != CodeForbidden {
		t.Fatal("As did not recover the typed error")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("As should return nil for untyped errors")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should return nil")
	}
}
