// Package apifilter, result collection side.
// Because the projection is chosen per request, the column set of a filtered
// query is not known at compile time; rows are therefore collected into maps
// keyed by column name, which also serialize naturally into the JSON `data`
// array of the list responses.
package apifilter

import (
	"github.com/jackc/pgx/v5"

	"github.com/user/jobbee-go/apperror"
)

// CollectRows drains a pgx result set into one map per row, keyed by the
// column names of the active projection. The rows are closed by the caller's
// defer; an empty result is a valid zero-length slice, not an error.
func CollectRows(rows pgx.Rows) ([]map[string]interface{}, error) {
	fields := rows.FieldDescriptions()
	out := make([]map[string]interface{}, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to read result row", err)
		}
		row := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate result rows", err)
	}
	return out, nil
}
