package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/webauth/pkg/profile"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindAbsent is the zero Value. Saving it deletes the key.
	KindAbsent Kind = iota
	KindProfile
	KindURL
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindProfile:
		return "profile"
	case KindURL:
		return "url"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a stored value: a user profile, a requested URL or an arbitrary
// JSON document. The zero Value means "absent".
type Value struct {
	kind    Kind
	profile *profile.Profile
	url     string
	raw     json.RawMessage
}

// ProfileValue wraps a profile. A nil profile yields the absent value.
func ProfileValue(p *profile.Profile) Value {
	if p == nil {
		return Value{}
	}
	return Value{kind: KindProfile, profile: p}
}

// URLValue wraps a requested URL.
func URLValue(url string) Value {
	return Value{kind: KindURL, url: url}
}

// RawValue encodes v as JSON and wraps it. A nil v yields the absent value.
func RawValue(v any) (Value, error) {
	if v == nil {
		return Value{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, errors.Join(ErrEncode, err)
	}
	return Value{kind: KindRaw, raw: data}, nil
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Profile returns the wrapped profile.
func (v Value) Profile() (*profile.Profile, bool) {
	return v.profile, v.kind == KindProfile
}

// URL returns the wrapped URL.
func (v Value) URL() (string, bool) {
	return v.url, v.kind == KindURL
}

// Decode unmarshals a raw value into dst.
func (v Value) Decode(dst any) error {
	if v.kind != KindRaw {
		return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedKind, KindRaw, v.kind)
	}
	if err := json.Unmarshal(v.raw, dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Codec turns values into backend bytes and back.
type Codec interface {
	Encode(v Value) ([]byte, error)
	Decode(data []byte) (Value, error)
}

// JSONCodec stores values as a small JSON envelope tagged with the kind.
type JSONCodec struct{}

type envelope struct {
	Kind    string           `json:"kind"`
	Profile *profile.Profile `json:"profile,omitempty"`
	URL     string           `json:"url,omitempty"`
	Raw     json.RawMessage  `json:"raw,omitempty"`
}

// Encode implements Codec.
func (JSONCodec) Encode(v Value) ([]byte, error) {
	env := envelope{Kind: v.kind.String()}
	switch v.kind {
	case KindProfile:
		env.Profile = v.profile
	case KindURL:
		env.URL = v.url
	case KindRaw:
		env.Raw = v.raw
	default:
		return nil, fmt.Errorf("%w: cannot encode %s value", ErrEncode, v.kind)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

// Decode implements Codec. Numbers inside profile attributes decode as
// json.Number, so integers keep their exact value.
func (JSONCodec) Decode(data []byte) (Value, error) {
	var env envelope
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return Value{}, errors.Join(ErrDecode, err)
	}

	switch env.Kind {
	case "profile":
		if env.Profile == nil {
			return Value{}, fmt.Errorf("%w: profile envelope without profile", ErrDecode)
		}
		return ProfileValue(env.Profile), nil
	case "url":
		return URLValue(env.URL), nil
	case "raw":
		return Value{kind: KindRaw, raw: env.Raw}, nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind %q", ErrDecode, env.Kind)
	}
}
