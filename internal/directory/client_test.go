package directory

import (
	"strings"
	"testing"
)

func TestExtractPayloadClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		path       string
		wantErr    string
		want       string
	}{
		{
			name:       "non 2xx status",
			statusCode: 503,
			body:       `{}`,
			path:       "response",
			wantErr:    "status=503",
		},
		{
			name:       "service error object",
			statusCode: 200,
			body:       `{"error": {"error_code": 5, "error_msg": "User authorization failed"}}`,
			path:       "response",
			wantErr:    "error 5: User authorization failed",
		},
		{
			name:       "decode failure",
			statusCode: 200,
			body:       `{"response": `,
			path:       "response",
			wantErr:    "json decode error",
		},
		{
			name:       "missing path",
			statusCode: 200,
			body:       `{"response": {"count": 1}}`,
			path:       "response.items",
			wantErr:    "object not found",
		},
		{
			name:       "empty body without path",
			statusCode: 200,
			body:       "",
			path:       "",
		},
		{
			name:       "empty body with path",
			statusCode: 200,
			body:       "",
			path:       "response",
			wantErr:    "object not found",
		},
		{
			name:       "nested path",
			statusCode: 200,
			body:       `{"response": {"inner": {"value": 42}}}`,
			path:       "response.inner.value",
			want:       "42",
		},
		{
			name:       "list stops path traversal",
			statusCode: 200,
			body:       `{"response": [{"id": 1}]}`,
			path:       "response.items",
			want:       `[{"id": 1}]`,
		},
		{
			name:       "sloppy path separators",
			statusCode: 200,
			body:       `{"response": {"count": 7}}`,
			path:       "response. .count",
			want:       "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := extractPayload("test.op", tt.statusCode, []byte(tt.body), tt.path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got payload %s", tt.wantErr, raw)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("unexpected error: got %q want substring %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("extract payload: %v", err)
			}
			if tt.want != "" && strings.TrimSpace(string(raw)) != tt.want {
				t.Fatalf("unexpected payload: got %s want %s", raw, tt.want)
			}
		})
	}
}
