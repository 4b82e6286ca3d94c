package nodeedit

import "strconv"

// GetAtPath returns the value at path. ok is false when the walk meets an
// absent value before the path is exhausted. The root is returned as is for
// an empty path.
func GetAtPath(root any, path Path) (any, bool) {
	cur := root
	for _, seg := range path {
		if cur == nil {
			return nil, false
		}
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// SetAtPath returns a new root with value installed at path. When the value
// already there and value are both objects they are shallow merged, so keys
// not mentioned by value survive. root is never modified.
func SetAtPath(root any, path Path, value any) any {
	return setAtPath(root, path, normalize(value), true)
}

// ReplaceAtPath is SetAtPath without the object merge: the subtree at path
// becomes exactly value.
func ReplaceAtPath(root any, path Path, value any) any {
	return setAtPath(root, path, normalize(value), false)
}

func setAtPath(root any, path Path, value any, merge bool) any {
	if m, ok := root.(map[string]any); ok {
		root = normalize(m)
	}
	if len(path) == 0 {
		if merge && isPlainObject(root) && isPlainObject(value) {
			return shallowMerge(root.(*Object), value.(*Object))
		}
		return value
	}

	var cur any
	if root == nil {
		cur = containerFor(path[0])
	} else {
		cur = cloneValue(root)
	}
	return setIn(cur, path, value, merge)
}

// setIn installs value below cur, which is already a private copy, and
// returns the (possibly regrown) container.
func setIn(cur any, path Path, value any, merge bool) any {
	seg := path[0]
	cur = ensureContainer(cur, seg)

	if len(path) == 1 {
		existing, _ := child(cur, seg)
		if merge && isPlainObject(existing) && isPlainObject(value) {
			value = shallowMerge(existing.(*Object), value.(*Object))
		}
		return put(cur, seg, value)
	}

	next, _ := child(cur, seg)
	if next == nil {
		next = containerFor(path[1])
	}
	return put(cur, seg, setIn(next, path[1:], value, merge))
}

func containerFor(seg Segment) any {
	if seg.IsIndex() {
		return []any{}
	}
	return NewObject()
}

// ensureContainer keeps objects and arrays and replaces anything else with a
// container shaped for seg.
func ensureContainer(cur any, seg Segment) any {
	switch t := cur.(type) {
	case *Object:
		if t != nil {
			return t
		}
	case []any:
		return t
	}
	return containerFor(seg)
}

func child(cur any, seg Segment) (any, bool) {
	switch t := cur.(type) {
	case *Object:
		if t == nil {
			return nil, false
		}
		return t.Get(seg.Key())
	case map[string]any:
		v, ok := t[seg.Key()]
		return v, ok
	case []any:
		i, ok := arrayIndex(seg)
		if !ok || i >= len(t) {
			return nil, false
		}
		return t[i], true
	}
	return nil, false
}

func put(cur any, seg Segment, value any) any {
	switch t := cur.(type) {
	case *Object:
		t.Set(seg.Key(), value)
		return t
	case []any:
		i, ok := arrayIndex(seg)
		if !ok || i > MaxDenseIndex {
			// named properties have no JSON form, and indices past
			// MaxDenseIndex are dropped
			return t
		}
		for len(t) <= i {
			t = append(t, nil)
		}
		t[i] = value
		return t
	}
	return cur
}

// arrayIndex resolves seg against an array: index segments directly, key
// segments only when they are a canonical decimal index.
func arrayIndex(seg Segment) (int, bool) {
	if i, ok := seg.Index(); ok {
		return i, true
	}
	k := seg.Key()
	i, err := strconv.Atoi(k)
	if err != nil || i < 0 || strconv.Itoa(i) != k {
		return 0, false
	}
	return i, true
}
