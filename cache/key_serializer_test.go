package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type lookupError struct{ code int }

func (e *lookupError) Error() string { return "lookup failed" }

type keyPart struct {
	Tenant string
	Page   int
	secret string
}

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_SerializeKey(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	value := 42

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			method: "usersservice:findall",
			want:   "usersservice:findall",
		},
		{
			name:   "scalars keep plain text",
			method: "get",
			args:   []any{1, "hello", true, 3.14},
			want:   joinWithSeparator("get", "1", "hello", "true", "3.14"),
		},
		{
			name:   "string with separator",
			method: "search",
			args:   []any{"hello:world"},
			want:   joinWithSeparator("search", "hello:world"),
		},
		{
			name:   "pointer is dereferenced",
			method: "byref",
			args:   []any{&value},
			want:   joinWithSeparator("byref", "42"),
		},
		{
			name:   "nil values",
			method: "nils",
			args:   []any{nil, (*int)(nil), ([]int)(nil), (map[string]int)(nil)},
			want:   joinWithSeparator("nils", "nil", "nil", "slice:nil", "map:nil"),
		},
		{
			name:   "stringer and error",
			method: "text",
			args:   []any{2 * time.Second, errors.New("boom")},
			want:   joinWithSeparator("text", "2s", "boom"),
		},
		{
			name:   "nil error pointer",
			method: "text",
			args:   []any{(*lookupError)(nil), error((*lookupError)(nil))},
			want:   joinWithSeparator("text", "nil", "nil"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_SerializeValue(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "slice", value: []int{1, 2, 3}, want: "slice[3]:{1,2,3}"},
		{name: "empty slice", value: []string{}, want: "slice[0]:{}"},
		{name: "array", value: [2]string{"a", "b"}, want: "array[2]:{a,b}"},
		{name: "map is sorted", value: map[string]int{"b": 2, "a": 1}, want: "map[2]:{a=1,b=2}"},
		{name: "struct exported fields only", value: keyPart{Tenant: "acme", Page: 2, secret: "x"}, want: "struct:{Tenant:acme,Page:2}"},
		{name: "nested", value: []keyPart{{Tenant: "t"}}, want: "slice[1]:{struct:{Tenant:t,Page:0}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serializer.SerializeValue(tt.value); got != tt.want {
				t.Errorf("SerializeValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Functions(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	testFunc := func() {}

	key1 := serializer.SerializeKey("withfunc", testFunc)
	key2 := serializer.SerializeKey("withfunc", testFunc)

	if key1 != key2 {
		t.Errorf("function serialization should be stable: %v != %v", key1, key2)
	}

	if !strings.HasPrefix(key1, joinWithSeparator("withfunc", "func")+":") {
		t.Errorf("function serialization should use func: prefix, got: %v", key1)
	}
}

func TestDefaultKeySerializer_Channels(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	key := serializer.SerializeKey("withchan", make(chan int))

	if !strings.HasPrefix(key, joinWithSeparator("withchan", "chan")+":") {
		t.Errorf("channel should be serialized with chan: prefix, got: %v", key)
	}
}

func TestDefaultKeySerializer_Stability(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	args := []any{1, "hello", []int{1, 2, 3}, map[string]int{"a": 1, "b": 2, "c": 3}}

	first := serializer.SerializeKey("stable", args...)
	for i := 0; i < 20; i++ {
		if got := serializer.SerializeKey("stable", args...); got != first {
			t.Fatalf("key serialization should be stable across calls: %v != %v", got, first)
		}
	}
}

func BenchmarkDefaultKeySerializer(b *testing.B) {
	serializer := NewDefaultKeySerializer()
	args := []any{1, "benchmark", []int{1, 2, 3}, map[string]int{"test": 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serializer.SerializeKey("benchmark", args...)
	}
}
