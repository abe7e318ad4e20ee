package directive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Count is an integer quantity that tolerates the formatting drift of
// generated JSON: both 3 and "3" decode to 3. Integral floats such as 3.0
// are accepted; anything else is an error.
type Count int

// Int returns c as an int.
func (c Count) Int() int { return int(c) }

// CountOf returns a pointer to a Count, for building directives in code.
func CountOf(n int) *Count {
	c := Count(n)
	return &c
}

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := parseCount(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("count %q: %w", s, err)
		}
		*c = Count(n)
		return nil
	}

	n, err := parseCount(string(data))
	if err != nil {
		return fmt.Errorf("count %s: %w", string(data), err)
	}
	*c = Count(n)
	return nil
}

func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}
