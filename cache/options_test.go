package cache

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-cacheable/pkg/testsupport"
)

type keyDerivationScenario struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Method      string `json:"method"`
	Key         string `json:"key"`
	Args        []any  `json:"args"`
	ExpectedKey string `json:"expectedKey"`
}

func TestDeriveKey_Scenarios(t *testing.T) {
	var fixtures struct {
		Scenarios []keyDerivationScenario `json:"scenarios"`
	}
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("key_derivation_scenarios.json"), &fixtures)

	if len(fixtures.Scenarios) == 0 {
		t.Fatal("no key derivation scenarios loaded")
	}

	for _, sc := range fixtures.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			got := DeriveKey(sc.Class, sc.Method, sc.Args, Options{Key: sc.Key})
			if got != sc.ExpectedKey {
				t.Errorf("DeriveKey() = %q, want %q", got, sc.ExpectedKey)
			}
		})
	}
}

func TestDeriveKey_Options(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		class  string
		method string
		args   []any
		opts   Options
		want   string
	}{
		{
			name:   "use params disabled drops arguments",
			class:  "UsersService",
			method: "findOne",
			args:   []any{7},
			opts:   Options{UseParams: Bool(false)},
			want:   "usersservice:findone",
		},
		{
			name:   "use params disabled keeps pattern substitution",
			class:  "UsersService",
			method: "findOne",
			args:   []any{7},
			opts:   Options{Key: "user:{0}", UseParams: Bool(false)},
			want:   "user:7",
		},
		{
			name:   "context is filtered before substitution",
			class:  "UsersService",
			method: "findOne",
			args:   []any{ctx, "42"},
			opts:   Options{Key: "user:{0}"},
			want:   "user:42",
		},
		{
			name:   "transport artifacts are filtered from default key",
			class:  "UsersController",
			method: "show",
			args:   []any{httptest.NewRequest("GET", "/users/9", nil), httptest.NewRecorder(), 9},
			want:   "userscontroller:show:9",
		},
		{
			name:   "explicit params select positions in order",
			class:  "Search",
			method: "run",
			args:   []any{"ignored", "term", 3},
			opts:   Options{Params: []int{2, 1}},
			want:   "search:run:3:term",
		},
		{
			name:   "explicit params keep values the heuristic would drop",
			class:  "Search",
			method: "run",
			args:   []any{map[string]any{"request": "x"}},
			opts:   Options{Params: []int{0}},
			want:   "search:run:map[1]:{request=x}",
		},
		{
			name:   "nil error pointer argument",
			class:  "UsersService",
			method: "findOne",
			args:   []any{(*lookupError)(nil)},
			want:   "usersservice:findone:nil",
		},
		{
			name:   "empty explicit params yields base key",
			class:  "Search",
			method: "run",
			args:   []any{"term"},
			opts:   Options{Params: []int{}},
			want:   "search:run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveKey(tt.class, tt.method, tt.args, tt.opts)
			if got != tt.want {
				t.Errorf("DeriveKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

type upperSerializer struct{}

func (upperSerializer) SerializeKey(method string, args ...any) string {
	return method + "|" + upperSerializer{}.SerializeValue(args[0])
}

func (upperSerializer) SerializeValue(v any) string {
	return "V"
}

func TestKeyDeriver_CustomSerializer(t *testing.T) {
	deriver := NewKeyDeriver(upperSerializer{})

	if got := deriver.DeriveKey("A", "b", []any{1}, Options{}); got != "a:b|V" {
		t.Errorf("DeriveKey() = %q, want %q", got, "a:b|V")
	}
	if got := deriver.DeriveKey("A", "b", []any{1}, Options{Key: "x:{0}"}); got != "x:V" {
		t.Errorf("DeriveKey() = %q, want %q", got, "x:V")
	}
}

func TestOptions_Clone(t *testing.T) {
	original := Options{
		Key:       "user:{0}",
		TTL:       time.Minute,
		UseParams: Bool(true),
		Params:    []int{0, 1},
	}

	clone := original.Clone()
	*original.UseParams = false
	original.Params[0] = 9

	if !*clone.UseParams {
		t.Error("clone should not share UseParams with the original")
	}
	if clone.Params[0] != 0 {
		t.Error("clone should not share Params with the original")
	}
	if clone.Key != original.Key || clone.TTL != original.TTL {
		t.Error("clone should copy scalar fields")
	}
}
