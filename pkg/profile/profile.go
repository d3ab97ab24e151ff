// Package profile defines the authenticated user profile produced by
// authentication clients and persisted by the storage layer.
//
// The storage layer treats a Profile as an opaque value: it is encoded,
// stored under the session id and decoded back, but never inspected.
package profile

import (
	"encoding/json"
	"math"
	"slices"
)

// TypedIDSeparator joins the client name and the provider user id in TypedID.
const TypedIDSeparator = "#"

// Profile is the user profile returned by an authentication client.
type Profile struct {
	ID          string         `json:"id"`
	ClientName  string         `json:"client_name"`
	Attributes  map[string]any `json:"attributes"`
	Roles       []string       `json:"roles,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	RememberMe  bool           `json:"remember_me,omitempty"`
}

// New creates a profile for the given client and provider user id.
func New(clientName, id string) *Profile {
	return &Profile{
		ID:         id,
		ClientName: clientName,
		Attributes: make(map[string]any),
	}
}

// TypedID returns the id prefixed with the client name, unique across clients.
func (p *Profile) TypedID() string {
	if p == nil {
		return ""
	}
	return p.ClientName + TypedIDSeparator + p.ID
}

// Attribute returns a profile attribute.
func (p *Profile) Attribute(name string) (any, bool) {
	if p == nil || p.Attributes == nil {
		return nil, false
	}
	v, ok := p.Attributes[name]
	return v, ok
}

// StringAttribute returns a string profile attribute.
func (p *Profile) StringAttribute(name string) (string, bool) {
	v, ok := p.Attribute(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64Attribute returns an integer profile attribute. It accepts Go
// integers and json.Number, which is how numbers read back from storage.
func (p *Profile) Int64Attribute(name string) (int64, bool) {
	v, ok := p.Attribute(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// SetAttribute stores a profile attribute. Values must be JSON encodable;
// once stored, numbers read back as json.Number and structs as maps.
func (p *Profile) SetAttribute(name string, value any) {
	if p == nil {
		return
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]any)
	}
	p.Attributes[name] = value
}

// AddRole grants a role once.
func (p *Profile) AddRole(role string) {
	if p == nil || slices.Contains(p.Roles, role) {
		return
	}
	p.Roles = append(p.Roles, role)
}

// HasRole reports whether the profile holds role.
func (p *Profile) HasRole(role string) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// AddPermission grants a permission once.
func (p *Profile) AddPermission(permission string) {
	if p == nil || slices.Contains(p.Permissions, permission) {
		return
	}
	p.Permissions = append(p.Permissions, permission)
}

// HasPermission reports whether the profile holds permission.
func (p *Profile) HasPermission(permission string) bool {
	return p != nil && slices.Contains(p.Permissions, permission)
}
