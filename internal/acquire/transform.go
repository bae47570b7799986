package acquire

import (
	"fmt"
	"strings"
)

// Transform rewrites one raw line before it is buffered. Returning an error
// drops the line.
type Transform func(string) (string, error)

// TransformError wraps a transform failure for a single row.
type TransformError struct {
	Row string
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %q: %v", e.Row, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Replace returns a transform applying literal old/new pairs in order, each
// one to the output of the previous.
func Replace(oldnew ...string) (Transform, error) {
	if len(oldnew)%2 != 0 {
		return nil, fmt.Errorf("replace needs old/new pairs, got %d strings", len(oldnew))
	}
	for i := 0; i < len(oldnew); i += 2 {
		if oldnew[i] == "" {
			return nil, fmt.Errorf("replace pair %d has an empty search string", i/2)
		}
	}
	pairs := append([]string(nil), oldnew...)
	return func(line string) (string, error) {
		for i := 0; i < len(pairs); i += 2 {
			line = strings.ReplaceAll(line, pairs[i], pairs[i+1])
		}
		return line, nil
	}, nil
}

// Chain composes transforms left to right. Nil entries are skipped and an
// empty chain is nil, meaning identity.
func Chain(transforms ...Transform) Transform {
	var steps []Transform
	for _, t := range transforms {
		if t != nil {
			steps = append(steps, t)
		}
	}
	if len(steps) == 0 {
		return nil
	}
	return func(line string) (string, error) {
		var err error
		for _, step := range steps {
			if line, err = step(line); err != nil {
				return "", err
			}
		}
		return line, nil
	}
}
