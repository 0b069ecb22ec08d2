package state

import (
	"fmt"
	"sort"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
	"github.com/ag-ui/a2ui-go/pkg/value"
)

// Diff returns the sorted list of paths whose value differs between before and
// after. Arrays are compared as a whole, so a changed element reports the array
// path. Both roots must be maps; otherwise the root path is reported whenever the
// values differ.
func Diff(before, after value.Value) ([]string, error) {
	_, beforeIsMap := before.(value.Map)
	_, afterIsMap := after.(value.Map)
	if !beforeIsMap || !afterIsMap {
		if value.Equal(before, after) {
			return nil, nil
		}
		return []string{"/"}, nil
	}

	original, err := value.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal original: %w", err)
	}
	modified, err := value.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal modified: %w", err)
	}

	patch, err := jsonpatch.CreateMergePatch(original, modified)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge patch: %w", err)
	}

	var tree map[string]any
	if err := encoding.Unmarshal(patch, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode merge patch: %w", err)
	}

	var paths []string
	collectLeaves(tree, nil, &paths)
	sort.Strings(paths)
	return paths, nil
}

func collectLeaves(node map[string]any, prefix []string, out *[]string) {
	for k, v := range node {
		segs := append(append([]string(nil), prefix...), k)
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			collectLeaves(sub, segs, out)
			continue
		}
		*out = append(*out, JoinPath(segs...))
	}
}
