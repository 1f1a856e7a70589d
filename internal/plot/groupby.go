package plot

import (
	"fmt"
	"io"

	"surveylens/internal/pkg/csvtable"
)

// ValueCount is one (value, count) pair in a group-by result.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupBy counts occurrences of each distinct raw value per requested
// column, each column independently. Pair order follows the order values
// were first seen in the file. A row missing a column counts under the
// empty value like any other.
func GroupBy(r *csvtable.Reader, columns []string) (map[string][]ValueCount, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", ErrInvalidRequest)
	}

	counts := make(map[string]map[string]int, len(columns))
	order := make(map[string][]string, len(columns))
	for _, col := range columns {
		counts[col] = make(map[string]int)
	}

	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, col := range columns {
			value := row[col]
			if _, seen := counts[col][value]; !seen {
				order[col] = append(order[col], value)
			}
			counts[col][value]++
		}
	}

	result := make(map[string][]ValueCount, len(columns))
	for _, col := range columns {
		pairs := make([]ValueCount, 0, len(order[col]))
		for _, value := range order[col] {
			pairs = append(pairs, ValueCount{Value: value, Count: counts[col][value]})
		}
		result[col] = pairs
	}
	return result, nil
}
