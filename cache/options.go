package cache

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options mark an operation as cacheable. They are attached once, at
// registration, and treated as read-only afterwards.
type Options struct {
	// Key is an optional pattern such as "user:{0}". Each {i} is replaced by
	// the string form of the i-th filtered argument.
	Key string

	// TTL for entries written on a miss. Zero uses the store default.
	TTL time.Duration

	// UseParams controls whether arguments are appended to the derived
	// default key. nil behaves like true. It has no effect on Key patterns.
	UseParams *bool

	// Params lists the argument positions relevant to the key, in order.
	// When nil, transport artifacts are filtered out heuristically.
	Params []int
}

// Clone returns a copy that shares no slices or pointers with o.
func (o Options) Clone() Options {
	c := o
	if o.UseParams != nil {
		v := *o.UseParams
		c.UseParams = &v
	}
	if o.Params != nil {
		c.Params = append([]int(nil), o.Params...)
	}
	return c
}

func (o Options) useParams() bool {
	return o.UseParams == nil || *o.UseParams
}

// Bool returns a pointer to v, handy for Options.UseParams.
func Bool(v bool) *bool {
	return &v
}

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// KeyDeriver computes cache keys for intercepted invocations.
type KeyDeriver struct {
	serializer KeySerializer
}

// NewKeyDeriver returns a deriver using serializer for argument string
// forms. A nil serializer falls back to the default one.
func NewKeyDeriver(serializer KeySerializer) *KeyDeriver {
	if serializer == nil {
		serializer = NewDefaultKeySerializer()
	}
	return &KeyDeriver{serializer: serializer}
}

// DeriveKey builds the key for one invocation of class.method with args.
//
// With a Key pattern every {i} placeholder is substituted with the string
// form of the i-th filtered argument; placeholders without a matching
// argument are kept verbatim. Without a pattern the key is
// "class:method[:arg0:arg1...]", with class and method lowercased.
func (d *KeyDeriver) DeriveKey(class, method string, args []any, opts Options) string {
	filtered := FilterArgs(args, opts.Params)

	if opts.Key != "" {
		return d.substitute(opts.Key, filtered)
	}

	base := strings.ToLower(class) + KeySeparator + strings.ToLower(method)
	if !opts.useParams() || len(filtered) == 0 {
		return base
	}
	return d.serializer.SerializeKey(base, filtered...)
}

// substitute replaces placeholders in a single pass, so text coming from an
// argument is never scanned for placeholders again.
func (d *KeyDeriver) substitute(pattern string, args []any) string {
	return placeholderPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		digits := match[1 : len(match)-1]
		idx, err := strconv.Atoi(digits)
		if err != nil || strconv.Itoa(idx) != digits || idx >= len(args) {
			return match
		}
		return d.serializer.SerializeValue(args[idx])
	})
}

var defaultDeriver = NewKeyDeriver(nil)

// DeriveKey uses the default key serializer.
func DeriveKey(class, method string, args []any, opts Options) string {
	return defaultDeriver.DeriveKey(class, method, args, opts)
}
