package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace-portal/model"
)

var ErrUnknownEnvelope = errors.New("unrecognised response envelope")

// pageWire is the paginated envelope as the API sends it. Content may hold
// the items directly or another {data: ...} layer.
type pageWire struct {
	Content       json.RawMessage `json:"content"`
	Data          json.RawMessage `json:"data"`
	TotalElements *int            `json:"totalElements"`
	TotalPages    *int            `json:"totalPages"`
	Size          *int            `json:"size"`
	Number        *int            `json:"number"`
}

// DecodePage turns any of the list envelopes the API uses into a Page:
//
//	{content: [...], totalPages, ...}
//	{data: {content: [...], ...}}
//	{content: {data: [...], ...}}
//	{data: [...]}
//	[...]
func DecodePage[T any](raw []byte) (model.Page[T], error) {
	return decodePage[T](bytes.TrimSpace(raw), 0)
}

func decodePage[T any](raw []byte, depth int) (model.Page[T], error) {
	if depth > 2 || len(raw) == 0 {
		return model.Page[T]{}, ErrUnknownEnvelope
	}

	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return model.Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return model.SinglePage(items), nil
	case '{':
	default:
		return model.Page[T]{}, ErrUnknownEnvelope
	}

	var w pageWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Page[T]{}, fmt.Errorf("decode envelope: %w", err)
	}

	inner := w.Content
	if isNull(inner) {
		inner = w.Data
	}
	if isNull(inner) {
		return model.Page[T]{}, ErrUnknownEnvelope
	}

	page, err := decodePage[T](bytes.TrimSpace(inner), depth+1)
	if err != nil {
		return model.Page[T]{}, err
	}
	// outer pagination fields win over the single-page defaults of a bare array
	if w.TotalElements != nil {
		page.TotalElements = *w.TotalElements
	}
	if w.TotalPages != nil {
		page.TotalPages = *w.TotalPages
	}
	if w.Size != nil {
		page.Size = *w.Size
	}
	if w.Number != nil {
		page.Number = *w.Number
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page, nil
}

// DecodeItem decodes a single entity, optionally wrapped in {data: ...}.
func DecodeItem[T any](raw []byte) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return out, ErrUnknownEnvelope
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && !isNull(wrapper.Data) && bytes.TrimSpace(wrapper.Data)[0] == '{' {
		raw = wrapper.Data
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode item: %w", err)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
