package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("acquire: %w", WithMetadata(CodeSlotConflict, "venue busy", map[string]string{"venue_id": "v1"}))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected errors.Is to match slot conflict")
	}
	if errors.Is(err, ErrHoldExpired) {
		t.Fatalf("unexpected match with hold expired")
	}
	if CodeOf(err) != CodeSlotConflict {
		t.Fatalf("CodeOf = %s", CodeOf(err))
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeGatewayUnavailable, "create checkout", errors.New("dial tcp: refused"))
	if err.Error() != "create checkout: dial tcp: refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected gateway unavailable")
	}
}

func TestGRPCRoundTrip(t *testing.T) {
	src := WithMetadata(CodeSlotConflict, "slot is held", map[string]string{"session_id": "s-1"})
	st, ok := status.FromError(ToGRPCStatus(src))
	if !ok {
		t.Fatalf("expected status error")
	}
	if st.Code() != codes.AlreadyExists {
		t.Fatalf("grpc code = %s, want AlreadyExists", st.Code())
	}
	code, md := FromGRPCStatus(st.Err())
	if code != CodeSlotConflict {
		t.Fatalf("code = %s", code)
	}
	if md["session_id"] != "s-1" {
		t.Fatalf("metadata = %v", md)
	}
}

func TestToGRPCStatus_NonDomainError(t *testing.T) {
	st, _ := status.FromError(ToGRPCStatus(errors.New("boom")))
	if st.Code() != codes.Internal {
		t.Fatalf("code = %s, want Internal", st.Code())
	}
	if ToGRPCStatus(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInterval:    http.StatusBadRequest,
		CodeSlotConflict:       http.StatusConflict,
		CodeResourceNotFound:   http.StatusNotFound,
		CodeGatewayUnavailable: http.StatusServiceUnavailable,
		CodeUnknown:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", code, got, want)
		}
	}
}
