package core

import "database/sql"

// Row scanning. Result sets are materialized into Row maps: every column is
// scanned through an interface{} cell, then normalized so the maps outlive
// the sql.Rows cursor.

// scanRowMaps reads every remaining row into a Row map.
func scanRowMaps(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		row, err := scanRowMap(rows, columns)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// scanFirstRowMap reads only the first row, returning ErrNoRows when the
// result set is empty.
func scanFirstRowMap(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	return scanRowMap(rows, columns)
}

// scanColumnValues reads the first column of every remaining row.
func scanColumnValues(rows *sql.Rows) ([]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []interface{}
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		result = append(result, values[0])
	}
	return result, rows.Err()
}

// scanFirstCell reads the first column of the first row, returning ErrNoRows
// when the result set is empty.
func scanFirstCell(rows *sql.Rows) (interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	values, err := scanValues(rows, len(columns))
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// scanRowMap scans the current row into a fresh Row map.
func scanRowMap(rows *sql.Rows, columns []string) (Row, error) {
	values, err := scanValues(rows, len(columns))
	if err != nil {
		return nil, err
	}
	row := make(Row, len(columns))
	for i, col := range columns {
		row[col] = values[i]
	}
	return row, nil
}

// scanValues scans the current row through interface{} cells and normalizes
// each value.
func scanValues(rows *sql.Rows, n int) ([]interface{}, error) {
	values := make([]interface{}, n)
	pointers := make([]interface{}, n)
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = normalizeValue(v)
	}
	return values, nil
}

// normalizeValue copies driver-owned byte slices into strings. Drivers may
// reuse the underlying buffer on the next cursor advance, so []byte values
// cannot be stored as-is.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
