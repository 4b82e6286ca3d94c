package nodeedit

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyJSONPatchAtPath applies an RFC 6902 patch to the subtree of doc at
// path. Patch paths are relative to that subtree, and the patched subtree
// replaces the old one, so keys removed by the patch are gone afterwards. A
// missing subtree starts out as an empty object.
func ApplyJSONPatchAtPath(doc []byte, patch jsonpatch.Patch, path Path) ([]byte, error) {
	for _, seg := range path {
		if i, ok := seg.Index(); ok && i > MaxDenseIndex {
			return nil, fmt.Errorf("%w: index %d in %s is past %d", ErrBadPath, i, path, MaxDenseIndex)
		}
	}
	var root any
	if len(doc) > 0 {
		var err error
		root, err = Decode(doc)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
	}

	sub, ok := GetAtPath(root, path)
	if !ok || sub == nil {
		sub = NewObject()
	}
	subJSON, err := Encode(sub, "")
	if err != nil {
		return nil, err
	}
	patched, err := patch.Apply([]byte(subJSON))
	if err != nil {
		return nil, fmt.Errorf("nodeedit: failed to apply patch at %s: %w", path, err)
	}
	value, err := Decode(patched)
	if err != nil {
		return nil, fmt.Errorf("nodeedit: patch at %s produced invalid JSON: %w", path, err)
	}

	out, err := Encode(ReplaceAtPath(root, path, value), DefaultIndent)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// ApplyJSONPatchAtPathBytes decodes patchJSON and calls ApplyJSONPatchAtPath.
func ApplyJSONPatchAtPathBytes(doc, patchJSON []byte, path Path) ([]byte, error) {
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("nodeedit: failed to decode patch: %w", err)
	}
	return ApplyJSONPatchAtPath(doc, patch, path)
}

// MergePatch returns the RFC 7386 merge patch that turns before into after.
func MergePatch(before, after []byte) ([]byte, error) {
	return jsonpatch.CreateMergePatch(before, after)
}

// Equal reports whether two JSON documents hold the same value.
func Equal(a, b []byte) bool {
	return jsonpatch.Equal(a, b)
}
