package inline

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/source"
	"github.com/cinesrc/cinesrc/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Picker selects the catalog sources to retrieve.
type Picker func([]source.Item) []source.Item

type Options struct {
	Out        io.Writer
	Retrievals *lifecycle.Retrievals
	Picker     mo.Option[Picker]
	Json       bool
	// Wait blocks until every started retrieval completes or fails.
	Wait bool
}

// ParsePicker builds a picker from its flag form:
// "all", "first", "last", "best", "index" with a position, "exact" with a
// source id and "quality" with a minimum tier.
func ParsePicker(kind, value string) (Picker, error) {
	switch kind {
	case "all":
		return func(items []source.Item) []source.Item { return items }, nil
	case "first":
		return func(items []source.Item) []source.Item {
			return items[:util.Min(1, len(items))]
		}, nil
	case "last":
		return func(items []source.Item) []source.Item {
			return items[len(items)-util.Min(1, len(items)):]
		}, nil
	case "best":
		return func(items []source.Item) []source.Item {
			if len(items) == 0 {
				return nil
			}
			return []source.Item{slices.MaxFunc(items, compareItems)}
		}, nil
	case "exact":
		return func(items []source.Item) []source.Item {
			return lo.Filter(items, func(item source.Item, _ int) bool {
				return item.Base().ID == value
			})
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}
		return func(items []source.Item) []source.Item {
			if len(items) == 0 {
				return nil
			}
			i := util.Min(int(idx), len(items)-1)
			return items[i : i+1]
		}, nil
	case "quality":
		minimum, ok := source.ParseQuality(value)
		if !ok {
			return nil, fmt.Errorf("invalid quality: %s", value)
		}
		return func(items []source.Item) []source.Item {
			return lo.Filter(items, func(item source.Item, _ int) bool {
				return item.Base().Quality >= minimum
			})
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}

// compareItems orders by quality, then ad-free over ad-supported.
// Earlier items win ties.
func compareItems(a, b source.Item) int {
	x, y := a.Base(), b.Base()
	if c := cmp.Compare(x.Quality, y.Quality); c != 0 {
		return c
	}
	switch {
	case x.AdFree == y.AdFree:
		return 0
	case x.AdFree:
		return 1
	default:
		return -1
	}
}
