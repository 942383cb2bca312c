// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the data types shared by the stores, services and
// handlers: the site content document, board posts and upload constraints.
package model

import (
	"encoding/json"
	"errors"
)

// ContentRowID is the fixed row id of the single site content document.
const ContentRowID = "global"

// Section keys of the content document. Each key holds one independently
// editable slice of the site.
const (
	SectionHeroSlides   = "indexHeroSlides"
	SectionIntroVideo   = "aboutIntroVideoSrc"
	SectionProcessSteps = "processSteps"
	SectionProductCards = "productCards"
)

// ContentDocument is the site content document: a flat map of independent
// section fields keyed by section name. Values are kept as raw JSON so a
// save never re-encodes (and never corrupts) sections it does not touch.
type ContentDocument map[string]json.RawMessage

// Merge returns a new document containing every key of base overlaid with
// every key of patch. The merge is shallow, by top-level key: patch values
// win on overlap, and keys absent from patch keep their base value.
func Merge(base, patch ContentDocument) ContentDocument {
	merged := make(ContentDocument, len(base)+len(patch))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range patch {
		merged[key] = value
	}
	return merged
}

// Clone returns a copy of the document sharing no map state with the
// original. Raw values are immutable by convention and are not copied.
func (d ContentDocument) Clone() ContentDocument {
	if d == nil {
		return ContentDocument{}
	}
	clone := make(ContentDocument, len(d))
	for key, value := range d {
		clone[key] = value
	}
	return clone
}

// DecodeContentDocument decodes raw JSON into a document, requiring a JSON
// object. Anything else (arrays, scalars, null, invalid JSON) is rejected.
func DecodeContentDocument(raw []byte) (ContentDocument, error) {
	var doc ContentDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("content is not a JSON object")
	}
	return doc, nil
}

// StringSection decodes the named key as a non-empty string.
// Returns false when the key is absent, malformed or empty.
func (d ContentDocument) StringSection(key string) (string, bool) {
	raw, ok := d[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// SliceSection decodes the named key into dst, which must be a pointer to
// a slice type. Returns false when the key is absent or malformed; the
// caller additionally checks for emptiness where the section requires it.
func (d ContentDocument) SliceSection(key string, dst any) bool {
	raw, ok := d[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
