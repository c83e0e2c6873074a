package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	cases := map[string]struct {
		column, dir string
		want        string
	}{
		"defaults":              {"", "", "created_at DESC"},
		"listed column asc":     {"document_number", "asc", "document_number ASC"},
		"padded input":          {"  status ", "  ASC ", "status ASC"},
		"unknown column":        {"password", "asc", "created_at ASC"},
		"column injection":      {"created_at; DROP TABLE print_jobs", "", "created_at DESC"},
		"direction injection":   {"status", "ASC; DROP TABLE print_jobs;--", "status DESC"},
		"columns are lowercase": {"STATUS", "desc", "created_at DESC"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, orderClause(tc.column, tc.dir))
		})
	}
}
