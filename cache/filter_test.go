package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type handlerArgs struct {
	Req  *http.Request
	Body string
}

type lookupArgs struct {
	ID string
}

func TestIsTransportArtifact(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "background context", value: context.Background(), want: true},
		{name: "derived context", value: ctx, want: true},
		{name: "http request", value: httptest.NewRequest(http.MethodGet, "/", nil), want: true},
		{name: "response writer", value: httptest.NewRecorder(), want: true},
		{name: "struct with Req field", value: handlerArgs{}, want: true},
		{name: "pointer to struct with Req field", value: &handlerArgs{}, want: true},
		{name: "map with response key", value: map[string]any{"Response": 1}, want: true},
		{name: "plain struct", value: lookupArgs{ID: "1"}, want: false},
		{name: "nil struct pointer", value: (*handlerArgs)(nil), want: false},
		{name: "map without transport keys", value: map[string]int{"id": 1}, want: false},
		{name: "int keyed map", value: map[int]string{1: "req"}, want: false},
		{name: "string", value: "req", want: false},
		{name: "int", value: 42, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportArtifact(tt.value); got != tt.want {
				t.Errorf("IsTransportArtifact(%T) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFilterArgs(t *testing.T) {
	ctx := context.Background()

	t.Run("heuristic keeps order of remaining args", func(t *testing.T) {
		got := FilterArgs([]any{ctx, "a", handlerArgs{}, 2}, nil)
		if len(got) != 2 || got[0] != "a" || got[1] != 2 {
			t.Errorf("FilterArgs() = %v, want [a 2]", got)
		}
	})

	t.Run("explicit params skip out of range positions", func(t *testing.T) {
		got := FilterArgs([]any{"a", "b"}, []int{1, 5, -1, 0})
		if len(got) != 2 || got[0] != "b" || got[1] != "a" {
			t.Errorf("FilterArgs() = %v, want [b a]", got)
		}
	})

	t.Run("no args", func(t *testing.T) {
		if got := FilterArgs(nil, nil); len(got) != 0 {
			t.Errorf("FilterArgs() = %v, want empty", got)
		}
	})
}
