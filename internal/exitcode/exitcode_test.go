package exitcode

import (
	"testing"

	"tasktrack/internal/tasks"
)

func TestFromKind(t *testing.T) {
	tests := []struct {
		kind tasks.Kind
		want int
	}{
		{tasks.KindOK, Success},
		{tasks.KindValidation, UserError},
		{tasks.KindNoSession, AuthError},
		{tasks.KindUnauthorized, AuthError},
		{tasks.KindStale, AuthError},
		{tasks.KindRejected, BackendError},
		{tasks.KindTransport, BackendError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := FromKind(tt.kind); got != tt.want {
				t.Errorf("FromKind(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}
