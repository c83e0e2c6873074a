package persistence

import (
	"slices"
	"strings"
)

// printJobColumns are the ledger columns a listing may be ordered by
var printJobColumns = []string{
	"created_at", "updated_at", "completed_at",
	"document_type", "document_number", "reference_id",
	"status", "file_size",
}

// orderClause builds an ORDER BY clause from user input. Unknown columns
// fall back to created_at and anything but "asc" sorts descending, so the
// result is always safe to interpolate.
func orderClause(column, dir string) string {
	column = strings.TrimSpace(column)
	if !slices.Contains(printJobColumns, column) {
		column = "created_at"
	}
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}
