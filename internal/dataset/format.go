package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// FormatCell renders a typed cell as its string form for CSV output, string
// conversion, and categorical labels. nil renders as the empty string.
//
// Floats use the shortest representation that round-trips (strconv 'g' with
// precision -1); whole floats therefore print without a decimal point. The
// column's declared type, not the printed form, is the source of truth.
func FormatCell(v any, dateLayout string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		if dateLayout == "" {
			dateLayout = "2006-01-02"
		}
		return x.Format(dateLayout)
	default:
		// Cells outside the documented set should not occur; render something
		// readable rather than panic.
		return fmt.Sprint(x)
	}
}
