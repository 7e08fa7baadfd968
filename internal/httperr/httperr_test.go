package httperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/lingua-school/lingua-lms/internal/httperr"
)

func TestKindOf(t *testing.T) {
	if httperr.KindOf(httperr.NotFound("x")) != httperr.KindNotFound {
		t.Error("not found kind")
	}
	if httperr.KindOf(httperr.Conflict("x")) != httperr.KindConflict {
		t.Error("conflict kind")
	}
	if httperr.KindOf(errors.New("plain")) != httperr.KindUnknown {
		t.Error("plain errors are unknown")
	}
	// kind survives wrapping
	wrapped := fmt.Errorf("outer: %w", httperr.Forbidden("nope"))
	if httperr.KindOf(wrapped) != httperr.KindForbidden {
		t.Error("kind lost through fmt wrapping")
	}
}

func TestWrapKeepsClassifiedErrors(t *testing.T) {
	orig := httperr.Conflict("already enrolled in this course")
	got := httperr.Wrap("enroll", orig)
	if got != orig {
		t.Errorf("Wrap replaced a classified error: %v", got)
	}
	if httperr.Wrap("op", nil) != nil {
		t.Error("Wrap(nil) must be nil")
	}
}

func TestWriteStatusAndMasking(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{httperr.NotFound("course %s not found", "c1"), 404, "course c1 not found"},
		{httperr.Conflict("already enrolled in this course"), 409, "already enrolled in this course"},
		{httperr.Forbidden("not your course"), 403, "not your course"},
		{httperr.Validation("invalid credentials"), 400, "invalid credentials"},
		{httperr.Wrap("list courses", errors.New("disk on fire")), 500, "internal error"},
		{errors.New("raw"), 500, "internal error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		httperr.Write(w, tt.err)
		if w.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.wantStatus)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body %q: %v", w.Body.String(), err)
		}
		if body["message"] != tt.wantMsg {
			t.Errorf("%v: message = %q, want %q", tt.err, body["message"], tt.wantMsg)
		}
	}
}
