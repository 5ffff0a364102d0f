package customer

import (
	"fmt"
	"strings"

	"customer-api/internal/domain"
)

const (
	defaultSortColumn    = "created_at"
	defaultSortDirection = "desc"
	dateLayout           = "2006-01-02"
)

var sortableColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type listQuery struct {
	where   string
	args    []any
	orderBy string
}

// buildListQuery turns a filter into a WHERE clause with positional args and
// an ORDER BY clause. Unknown sort fields and directions fall back to the
// defaults.
func buildListQuery(f domain.CustomerFilter) listQuery {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.WithTrashed {
		conds = append(conds, "deleted_at IS NULL")
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		p := bind("%" + term + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s OR company ILIKE %[1]s)", p))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+bind(string(f.Status)))
	}
	if company := strings.TrimSpace(f.Company); company != "" {
		conds = append(conds, "company ILIKE "+bind("%"+company+"%"))
	}
	if f.StartDate != nil {
		conds = append(conds, "created_at::date >= "+bind(f.StartDate.Format(dateLayout))+"::date")
	}
	if f.EndDate != nil {
		conds = append(conds, "created_at::date <= "+bind(f.EndDate.Format(dateLayout))+"::date")
	}

	q := listQuery{args: args, orderBy: orderClause(f.SortBy, f.SortDirection)}
	if len(conds) > 0 {
		q.where = "WHERE " + strings.Join(conds, " AND ")
	}
	return q
}

func orderClause(sortBy, direction string) string {
	col, ok := sortableColumns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		col = defaultSortColumn
	}
	dir := strings.ToLower(strings.TrimSpace(direction))
	if dir != "asc" && dir != "desc" {
		dir = defaultSortDirection
	}
	dir = strings.ToUpper(dir)
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir)
}
