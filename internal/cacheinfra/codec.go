package cacheinfra

import (
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrResetNotSupported is returned by Reset when the backing medium cannot
// clear all entries safely.
var ErrResetNotSupported = errors.New("cache: reset not supported by store")

// Encoded is a msgpack payload returned by serializing stores (redis, bolt).
// Callers decode it into the type they expect.
type Encoded []byte

func encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: encode %T", v)
	}
	return data, nil
}

// Decode unmarshals a payload produced by a serializing store into out.
func Decode(data Encoded, out any) error {
	if err := msgpack.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "cache: decode payload")
	}
	return nil
}
