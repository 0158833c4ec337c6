package ticket

import (
	"fmt"
	"strconv"
	"strings"

	"helpdesk/internal/errs"
)

// ParseRef accepts "12" or "#12".
func ParseRef(ref string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if trimmed == "" {
		return 0, errs.Validation("ticket reference is required")
	}

	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid ticket reference %q", ref)
	}
	return id, nil
}

func FormatRef(id uint64) string {
	return fmt.Sprintf("#%d", id)
}
