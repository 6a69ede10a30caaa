package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedPayload marks a layout_json blob that cannot be decoded.
var ErrMalformedPayload = errors.New("malformed layout_json payload")

// ToSkeleton converts a working layout to its persisted form. Timestamps are
// left zero; the store owns them.
func ToSkeleton(l Layout) Skeleton {
	return Skeleton{
		ID:          l.ID,
		Name:        l.Name,
		Type:        l.Type,
		Scope:       l.Scope,
		Description: l.Description,
		LayoutJSON: TreePayload{
			Components: l.Components,
			Version:    l.Version,
		},
		Version: l.Version,
	}
}

// FromSkeleton converts a persisted record back to the working
// representation.
func FromSkeleton(s Skeleton) Layout {
	return Layout{
		ID:          s.ID,
		Name:        s.Name,
		Type:        s.Type,
		Scope:       s.Scope,
		Description: s.Description,
		Components:  s.LayoutJSON.Components,
		Version:     s.LayoutJSON.Version,
	}
}

// DecodeTreePayload parses a raw layout_json column value. Malformed input
// comes back as an ErrMalformedPayload-wrapped error rather than a panic so
// that a corrupted row surfaces as a persistence failure.
func DecodeTreePayload(raw []byte) (TreePayload, error) {
	if len(raw) == 0 {
		return TreePayload{Version: DefaultVersion}, nil
	}
	if !gjson.ValidBytes(raw) {
		return TreePayload{}, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}
	if !gjson.GetBytes(raw, "components").Exists() {
		return TreePayload{}, fmt.Errorf("%w: missing components", ErrMalformedPayload)
	}
	var payload TreePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return TreePayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Version == 0 {
		payload.Version = DefaultVersion
	}
	return payload, nil
}

// EncodeTreePayload serializes a payload for storage.
func EncodeTreePayload(payload TreePayload) ([]byte, error) {
	if payload.Components == nil {
		payload.Components = []ComponentNode{}
	}
	return json.Marshal(payload)
}
