// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseRange parses the range expression grammar (§4.8): a comma-
// separated list of either a single 1-based index, a "start-end"
// inclusive range, or the literal "0" meaning "every index up to
// total". Duplicates collapse; the result is ascending.
func ParseRange(expr string, total int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var out []int
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "0" {
			for i := 1; i <= total; i++ {
				add(i)
			}
			continue
		}
		if i := strings.Index(part, "-"); i > 0 {
			start, err1 := strconv.Atoi(part[:i])
			end, err2 := strconv.Atoi(part[i+1:])
			if err1 != nil || err2 != nil || start < 1 || end < start {
				return nil, fmt.Errorf("query: invalid range expression %q", part)
			}
			for n := start; n <= end; n++ {
				add(n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("query: invalid range expression %q", part)
		}
		add(n)
	}

	sort.Ints(out)
	return out, nil
}
