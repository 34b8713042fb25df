package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// parts splits "v1.2.3" or "1.2.3-rc1" into its three numeric components.
// Pre-release suffixes are ignored.
func parts(v string) ([3]int, error) {
	var out [3]int

	core, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(v), "v"), "-")
	fields := strings.Split(core, ".")
	if len(fields) != 3 {
		return out, fmt.Errorf("version %q is not major.minor.patch", v)
	}

	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return out, fmt.Errorf("version %q: bad component %q", v, f)
		}
		out[i] = n
	}

	return out, nil
}

// Compare orders two release versions: 1 if a is newer, -1 if b is, 0 if equal.
func Compare(a, b string) (int, error) {
	av, err := parts(a)
	if err != nil {
		return 0, err
	}

	bv, err := parts(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		if c := cmp.Compare(av[i], bv[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
