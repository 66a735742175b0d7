package query

import "strconv"

// PaginateQuery appends cursor, ordering and limit clauses to a query over a
// table with a serial id column.
//
// The input query string must end with a bracketed where clause:
//
//	"SELECT ... WHERE (...)"
//
// The output query string is then one of:
//
//	"SELECT ... WHERE (...) AND id > $n ORDER BY id ASC LIMIT $m"
//	"SELECT ... WHERE (...) AND id < $n ORDER BY id DESC LIMIT $m"
func PaginateQuery(query string, opts []interface{}, cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {
	if len(cursor) > 0 {
		v := strconv.Itoa(len(opts) + 1)

		if direction == Ascending {
			query += " AND id > $" + v
		} else {
			query += " AND id < $" + v
		}

		opts = append(opts, cursor.ToUint64())
	}

	if direction == Ascending {
		query += " ORDER BY id ASC"
	} else {
		query += " ORDER BY id DESC"
	}

	if limit > 0 {
		v := strconv.Itoa(len(opts) + 1)
		query += " LIMIT $" + v
		opts = append(opts, limit)
	}

	return query, opts
}
