package cache

import (
	"context"
	"net/http"
	"reflect"
	"strings"
)

// transportFields are the field or key names that mark a value as a
// request/response carrier rather than a key-relevant argument.
var transportFields = map[string]struct{}{
	"req":      {},
	"res":      {},
	"request":  {},
	"response": {},
}

// FilterArgs returns the arguments relevant to a cache key.
//
// When params is non-nil only those positions are kept, in the declared
// order; out of range positions are skipped. Otherwise transport artifacts
// are dropped and every other argument is kept in its original order.
func FilterArgs(args []any, params []int) []any {
	if params != nil {
		out := make([]any, 0, len(params))
		for _, idx := range params {
			if idx >= 0 && idx < len(args) {
				out = append(out, args[idx])
			}
		}
		return out
	}

	out := make([]any, 0, len(args))
	for _, arg := range args {
		if IsTransportArtifact(arg) {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// IsTransportArtifact reports whether v looks like a transport-layer
// object: a context, an *http.Request, an http.ResponseWriter, or a struct
// or string-keyed map exposing req, res, request or response.
func IsTransportArtifact(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case context.Context, *http.Request, http.ResponseWriter:
		return true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			if isTransportName(rt.Field(i).Name) {
				return true
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if isTransportName(iter.Key().String()) {
				return true
			}
		}
	}
	return false
}

func isTransportName(name string) bool {
	_, ok := transportFields[strings.ToLower(name)]
	return ok
}
