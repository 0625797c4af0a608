package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coregx/fabrica/internal/dialects"
	"github.com/coregx/fabrica/internal/tracer"
)

// Query is a built statement: SQL text with embedded {:name} placeholders and
// the named parameter values bound to them. Queries are produced by the
// builder's renderers or by DB.NewQuery, and execute through the connection's
// prepared statement cache with logging, tracing, hooks, and audit applied.
// When tx is not nil, the query executes within that transaction.
type Query struct {
	sql     string
	params  Params
	db      *DB
	tx      *sql.Tx // nil for non-transactional queries
	ctx     context.Context
	dialect dialects.Dialect
}

// SQL returns the statement text with named placeholders.
func (q *Query) SQL() string {
	return q.sql
}

// Params returns the named parameter values bound to the statement.
func (q *Query) Params() Params {
	return q.params
}

// WithContext sets the context used for execution.
func (q *Query) WithContext(ctx context.Context) *Query {
	q.ctx = ctx
	return q
}

// Bind adds named parameter values to the statement. Keys are accepted bare
// ("id"), with a colon prefix (":id"), or in token form ("{:id}"); later
// values replace earlier ones bound under the same key.
func (q *Query) Bind(params Params) *Query {
	if q.params == nil {
		q.params = make(Params, len(params))
	}
	for key, value := range params {
		q.params[canonicalKey(key)] = value
	}
	return q
}

// Statement resolves the query to executable form: SQL text with
// dialect-specific positional placeholders and the parameter values in
// placeholder order. Returns an error wrapping ErrMissingParam when the text
// references a parameter that was never bound.
func (q *Query) Statement() (string, []interface{}, error) {
	sqlText, names := processSQL(q.sql, q.resolveDialect())
	args, err := bindParams(q.params, names)
	if err != nil {
		return "", nil, err
	}
	return sqlText, args, nil
}

// Interpolate renders the statement with parameter values inlined as SQL
// literals. The result is unsafe to execute and exists for debugging and
// audit hashing only.
func (q *Query) Interpolate() (string, error) {
	dialect := q.resolveDialect()

	var missing []string
	result := namedPlaceholderRegex.ReplaceAllStringFunc(q.sql, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := q.params[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return dialect.QuoteValue(value)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, strings.Join(missing, ", "))
	}

	result = quoteRegex.ReplaceAllStringFunc(result, func(match string) string {
		return quoteIdentifier(match[2:len(match)-2], dialect)
	})
	return result, nil
}

// Exec runs the statement and returns the driver result.
// If the query is part of a transaction, it bypasses the statement cache and
// uses the transaction connection.
func (q *Query) Exec() (sql.Result, error) {
	if q.db == nil {
		return nil, WrapError(ErrNoExecutor, "statement has no database connection")
	}

	ctx, span := q.db.tracer.StartSpan(q.context(), "fabrica.query.exec")
	defer span.End()

	if err := q.checkSecurity(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()

	sqlText, args, err := q.Statement()
	if err != nil {
		span.RecordError(err)
		q.logBuildError("parameter binding failed", err)
		return nil, err
	}

	stmt, needsClose, err := q.prepareStatement(ctx, sqlText)
	if err != nil {
		span.RecordError(err)
		q.logBuildError("statement preparation failed", err)
		return nil, err
	}
	if needsClose {
		defer func() { _ = stmt.Close() }()
	}

	result, err := stmt.ExecContext(ctx, args...)

	var rowsAffected int64
	if result != nil && err == nil {
		rowsAffected, _ = result.RowsAffected()
	}

	q.finish(ctx, span, start, result, rowsAffected, err)
	return result, err
}

// Rows runs the statement and returns every row as a column-keyed map.
func (q *Query) Rows() ([]Row, error) {
	var result []Row
	err := q.fetch("fabrica.query.rows", func(rows *sql.Rows) error {
		var err error
		result, err = scanRowMaps(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Row runs the statement and returns the first row. Returns ErrNoRows when
// the result set is empty.
func (q *Query) Row() (Row, error) {
	var result Row
	err := q.fetch("fabrica.query.row", func(rows *sql.Rows) error {
		var err error
		result, err = scanFirstRowMap(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Column runs the statement and returns the first column of every row.
func (q *Query) Column() ([]interface{}, error) {
	var result []interface{}
	err := q.fetch("fabrica.query.column", func(rows *sql.Rows) error {
		var err error
		result, err = scanColumnValues(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cell runs the statement and returns the first column of the first row.
// Returns ErrNoRows when the result set is empty.
func (q *Query) Cell() (interface{}, error) {
	var result interface{}
	err := q.fetch("fabrica.query.cell", func(rows *sql.Rows) error {
		var err error
		result, err = scanFirstCell(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fetch runs the statement as a row-returning query and hands the open cursor
// to scan. Shared by Rows, Row, Column, and Cell.
func (q *Query) fetch(spanName string, scan func(*sql.Rows) error) error {
	if q.db == nil {
		return WrapError(ErrNoExecutor, "statement has no database connection")
	}

	ctx, span := q.db.tracer.StartSpan(q.context(), spanName)
	defer span.End()

	if err := q.checkSecurity(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	start := time.Now()

	sqlText, args, err := q.Statement()
	if err != nil {
		span.RecordError(err)
		q.logBuildError("parameter binding failed", err)
		return err
	}

	stmt, needsClose, err := q.prepareStatement(ctx, sqlText)
	if err != nil {
		span.RecordError(err)
		q.logBuildError("statement preparation failed", err)
		return err
	}
	if needsClose {
		defer func() { _ = stmt.Close() }()
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err == nil {
		scanErr := scan(rows)
		closeErr := rows.Close()
		if scanErr != nil {
			err = scanErr
		} else if closeErr != nil {
			err = closeErr
		}
	}

	q.finish(ctx, span, start, nil, 0, err)
	return err
}

// prepareStatement prepares the positional SQL, using the transaction or the
// statement cache. Transactions bypass the cache; their statements belong to
// the transaction connection and must be closed by the caller.
func (q *Query) prepareStatement(ctx context.Context, sqlText string) (*sql.Stmt, bool, error) {
	if q.tx != nil {
		stmt, err := q.tx.PrepareContext(ctx, sqlText)
		if err != nil {
			return nil, false, err
		}
		return stmt, true, nil // true = needs close
	}

	if stmt, ok := q.db.stmtCache.Get(sqlText); ok {
		return stmt, false, nil // false = cached, don't close
	}

	stmt, err := q.db.sqlDB.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, false, err
	}
	q.db.stmtCache.Set(sqlText, stmt)
	return stmt, false, nil
}

// checkSecurity validates the statement and parameters when a validator is
// configured. Blocked statements are reported to the audit trail.
func (q *Query) checkSecurity(ctx context.Context) error {
	if q.db.validator == nil {
		return nil
	}

	if err := q.db.validator.ValidateQuery(q.sql); err != nil {
		if q.db.auditor != nil {
			q.db.auditor.LogSecurityEvent(ctx, "query_blocked", q.sql, err)
		}
		return err
	}

	if err := q.db.validator.ValidateParams(q.params); err != nil {
		if q.db.auditor != nil {
			q.db.auditor.LogSecurityEvent(ctx, "params_blocked", q.sql, err)
		}
		return err
	}

	return nil
}

// finish records the outcome of an execution: structured log entry, span
// attributes, query hook, and audit trail.
func (q *Query) finish(ctx context.Context, span tracer.Span, start time.Time, result sql.Result, rowsAffected int64, err error) {
	elapsed := time.Since(start)
	operation := tracer.DetectOperation(q.sql)

	q.logResult(elapsed, rowsAffected, err)

	tracer.AddQueryAttributes(span, &tracer.QueryMetadata{
		SQL:          q.sql,
		Params:       q.params,
		Duration:     elapsed,
		RowsAffected: rowsAffected,
		Error:        err,
		Database:     q.db.driverName,
		Operation:    operation,
	})

	q.db.invokeHook(ctx, QueryEvent{
		SQL:          q.sql,
		Params:       q.params,
		Duration:     elapsed,
		RowsAffected: rowsAffected,
		Error:        err,
		Operation:    operation,
	})

	if q.db.auditor != nil {
		interpolated, ierr := q.Interpolate()
		if ierr != nil {
			interpolated = ""
		}
		q.db.auditor.LogOperation(ctx, operation, q.sql, q.params, interpolated, result, err, elapsed)
	}
}

// logResult logs the execution outcome if a logger is configured.
func (q *Query) logResult(elapsed time.Duration, rowsAffected int64, err error) {
	if q.db.logger == nil {
		return
	}

	masked := q.maskedParams()

	switch {
	case errors.Is(err, ErrNoRows):
		q.db.logger.Warn("query returned no rows",
			"sql", q.sql,
			"params", masked,
			"duration_ms", elapsed.Milliseconds(),
			"database", q.db.driverName,
		)
	case err != nil:
		q.db.logger.Error("query execution failed",
			"sql", q.sql,
			"params", masked,
			"duration_ms", elapsed.Milliseconds(),
			"database", q.db.driverName,
			"error", err,
		)
	default:
		q.db.logger.Info("query executed",
			"sql", q.sql,
			"params", masked,
			"duration_ms", elapsed.Milliseconds(),
			"rows_affected", rowsAffected,
			"database", q.db.driverName,
		)
	}
}

// logBuildError logs a failure that happened before execution started.
func (q *Query) logBuildError(msg string, err error) {
	if q.db.logger == nil {
		return
	}
	q.db.logger.Error(msg,
		"sql", q.sql,
		"params", q.maskedParams(),
		"error", err,
	)
}

// maskedParams formats the parameter map for logging with sensitive values
// redacted.
func (q *Query) maskedParams() string {
	return q.db.sanitizer.FormatParams(q.db.sanitizer.MaskParams(q.sql, q.params))
}

func (q *Query) context() context.Context {
	if q.ctx != nil {
		return q.ctx
	}
	return context.Background()
}

func (q *Query) resolveDialect() dialects.Dialect {
	if q.dialect != nil {
		return q.dialect
	}
	if q.db != nil {
		return q.db.dialect
	}
	return dialects.GetDialect("mysql")
}
