package normalize

import (
	"strings"

	"github.com/startupcfo/mayordomo/internal/common"
)

// ValidateColumns confirms that every required column is present among the
// headers, returning a StructuralError that lists all missing columns at
// once so the user can fix the file in a single pass.
func ValidateColumns(headers, required []string, label string) error {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[strings.TrimSpace(h)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &common.StructuralError{
			Label:   label,
			Reason:  "required columns are absent",
			Columns: missing,
		}
	}
	return nil
}
