package fieldscope

import (
	"fmt"
	"reflect"
	"sort"
)

// pathValue is one observation yielded by the walker.
type pathValue struct {
	path  string
	value any
}

// walkFrame is one pending node on the explicit traversal stack.
type walkFrame struct {
	path  string
	value any
	depth int
}

// walkRecord traverses one decoded record and calls fn for every node below
// the root: leaves, containers, and empty containers alike. Object keys
// append ".key" to the parent path; array elements append "[]" (collapsed,
// never indexed) so sibling elements contribute independent observations to
// the same path.
//
// The walk is iterative (no recursion) so adversarially deep input cannot
// exhaust the goroutine stack; depth beyond maxDepth fails with
// ErrMalformedRecord. A per-call identity set over container pointers
// catches self-referential input, which cannot arise from a JSON decoder
// but can from a hand-built tree.
//
// Object keys are visited in sorted order so a given record always yields
// the same observation sequence.
func walkRecord(root any, maxDepth int, fn func(path string, value any) error) error {
	obj, ok := root.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: record root must be an object, got %T", ErrMalformedRecord, root)
	}

	visited := map[uintptr]struct{}{
		reflect.ValueOf(obj).Pointer(): {},
	}

	stack := make([]walkFrame, 0, 32)
	stack = pushObject(stack, "", obj, 1)

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.depth > maxDepth {
			return fmt.Errorf("%w: depth %d exceeds ceiling %d at %q", ErrMalformedRecord, frame.depth, maxDepth, frame.path)
		}

		if err := fn(frame.path, frame.value); err != nil {
			return err
		}

		switch x := frame.value.(type) {
		case map[string]any:
			// Empty containers cannot participate in a cycle, and empty
			// slices may share a base pointer, so only non-empty ones are
			// tracked.
			if len(x) > 0 {
				ptr := reflect.ValueOf(x).Pointer()
				if _, seen := visited[ptr]; seen {
					return fmt.Errorf("%w: cycle detected at %q", ErrMalformedRecord, frame.path)
				}
				visited[ptr] = struct{}{}
			}
			stack = pushObject(stack, frame.path, x, frame.depth+1)
		case []any:
			if len(x) > 0 {
				ptr := reflect.ValueOf(x).Pointer()
				if _, seen := visited[ptr]; seen {
					return fmt.Errorf("%w: cycle detected at %q", ErrMalformedRecord, frame.path)
				}
				visited[ptr] = struct{}{}
			}
			// Elements share one collapsed path and are pushed in reverse
			// so they pop in record order.
			elemPath := frame.path + "[]"
			for i := len(x) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{path: elemPath, value: x[i], depth: frame.depth + 1})
			}
		}
	}

	return nil
}

// pushObject pushes the members of obj in reverse-sorted key order so they
// pop in sorted order.
func pushObject(stack []walkFrame, parent string, obj map[string]any, depth int) []walkFrame {
	if len(obj) == 0 {
		return stack
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		path := k
		if parent != "" {
			path = parent + "." + k
		}
		stack = append(stack, walkFrame{path: path, value: obj[k], depth: depth})
	}
	return stack
}

// collectRecord walks root and buffers every observation. Sessions apply a
// record all-or-nothing: a record that fails the depth or cycle check must
// not leave partial observations behind.
func collectRecord(root any, maxDepth int) ([]pathValue, error) {
	pairs := make([]pathValue, 0, 64)
	err := walkRecord(root, maxDepth, func(path string, value any) error {
		pairs = append(pairs, pathValue{path: path, value: value})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
