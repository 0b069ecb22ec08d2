package state

import (
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ag-ui/a2ui-go/pkg/value"
)

// genSegment produces path segments that mix map keys, array indexes and junk.
func genSegment() gopter.Gen {
	return gen.OneGenOf(
		gen.AlphaString(),
		gen.IntRange(0, 5).Map(func(i int) string { return string(rune('0' + i)) }),
		gen.OneConstOf("", "-1", "01", "items", "~", " "),
	)
}

func seededModel() *DataModel {
	dm := New()
	dm.Set("/items", value.Array{
		value.Map{"name": value.String("a")},
		value.Map{"name": value.String("b")},
	})
	dm.Set("/title", value.String("Hi"))
	return dm
}

func TestGetIsTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Get never panics and misses return nil", prop.ForAll(
		func(segs []string) bool {
			for _, dm := range []*DataModel{New(), seededModel()} {
				v, ok := dm.Get("/" + strings.Join(segs, "/"))
				if !ok && v != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genSegment()),
	))

	properties.TestingRun(t)
}

func TestSetThenGet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a value written at a path reads back", prop.ForAll(
		func(segs []string, s string) bool {
			path := "/" + strings.Join(segs, "/")
			dm := seededModel()
			dm.Set(path, value.String(s))
			got, ok := dm.Get(path)
			return ok && value.Equal(got, value.String(s))
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.IntRange(0, 5).Map(func(i int) string {
			return string(rune('0' + i))
		}))),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestMergeIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("merging the same update twice equals merging once", prop.ForAll(
		func(path []string, keys []string, vals []string) bool {
			update := value.Map{}
			for i := 0; i < len(keys) && i < len(vals); i++ {
				update[keys[i]] = value.Map{"v": value.String(vals[i])}
			}
			p := "/" + strings.Join(path, "/")

			once := seededModel()
			once.MergeAt(p, update)
			twice := seededModel()
			twice.MergeAt(p, update)
			twice.MergeAt(p, update)

			a, errA := value.Marshal(once.Root())
			b, errB := value.Marshal(twice.Root())
			return errA == nil && errB == nil && jsonpatch.Equal(a, b)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
