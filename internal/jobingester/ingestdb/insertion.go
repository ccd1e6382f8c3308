package ingestdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common/database"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/frame"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/metrics"
)

var dialect = goqu.Dialect("postgres")

// JobDb materializes combined frames as job tables in the target store.
type JobDb struct {
	db          *pgxpool.Pool
	metrics     *metrics.Metrics
	maxAttempts int
	maxBackoff  int
}

func NewJobDb(db *pgxpool.Pool, m *metrics.Metrics, maxAttempts, maxBackoff int) *JobDb {
	return &JobDb{db: db, metrics: m, maxAttempts: maxAttempts, maxBackoff: maxBackoff}
}

// Store replaces the named table with the frame's contents in one transaction,
// so re-processing a file never leaves rows from an earlier run behind. The
// bulk copy protocol is tried first; if that fails the rows are inserted
// serially and rows that cannot be inserted are discarded. Transient errors
// are retried with backoff up to the configured attempt limit.
func (j *JobDb) Store(ctx context.Context, tableName string, f *frame.Frame) (int, error) {
	var written int
	err := retry.Do(
		func() error {
			n, err := j.replaceTable(ctx, tableName, f, false)
			if err != nil && !database.IsRetryableError(err) {
				log.WithError(err).Warnf("Bulk copy into %s failed, falling back to serial inserts", tableName)
				n, err = j.replaceTable(ctx, tableName, f, true)
			}
			written = n
			return err
		},
		retry.Attempts(uint(j.maxAttempts)),
		retry.RetryIf(database.IsRetryableError),
		retry.Delay(time.Second),
		retry.MaxDelay(time.Duration(j.maxBackoff)*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return 0, errors.WithMessagef(err, "storing table %s", tableName)
	}
	j.metrics.RecordRowsWritten(written)
	return written, nil
}

func (j *JobDb) replaceTable(ctx context.Context, tableName string, f *frame.Frame, serial bool) (int, error) {
	var written int
	err := j.db.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize())); err != nil {
			j.metrics.RecordDBError(metrics.DBOperationDropTable)
			return errors.WithMessagef(err, "dropping %s", tableName)
		}
		if _, err := tx.Exec(ctx, tableDDL(tableName, f.Columns())); err != nil {
			j.metrics.RecordDBError(metrics.DBOperationCreateTable)
			return errors.WithMessagef(err, "creating %s", tableName)
		}

		var err error
		if serial {
			written, err = j.insertSerial(ctx, tx, tableName, f)
		} else {
			written, err = j.insertCopy(ctx, tx, tableName, f)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (j *JobDb) insertCopy(ctx context.Context, tx pgx.Tx, tableName string, f *frame.Frame) (int, error) {
	rows := make([][]interface{}, f.Rows())
	for i := range rows {
		rows[i] = rowValues(f, i)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{tableName}, columnNames(f.Columns()), pgx.CopyFromRows(rows))
	if err != nil {
		j.metrics.RecordDBError(metrics.DBOperationCopy)
		return 0, errors.WithMessagef(err, "copying into %s", tableName)
	}
	return int(n), nil
}

func (j *JobDb) insertSerial(ctx context.Context, tx pgx.Tx, tableName string, f *frame.Frame) (int, error) {
	names := columnNames(f.Columns())
	cols := make([]interface{}, len(names))
	for i, name := range names {
		cols[i] = name
	}

	written := 0
	for i := 0; i < f.Rows(); i++ {
		sql, args, err := dialect.Insert(tableName).Cols(cols...).Vals(goqu.Vals(rowValues(f, i))).Prepared(true).ToSQL()
		if err != nil {
			return written, errors.WithMessagef(err, "building insert for %s", tableName)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if database.IsRetryableError(err) {
				j.metrics.RecordDBError(metrics.DBOperationInsert)
				return written, errors.WithMessagef(err, "inserting into %s", tableName)
			}
			j.metrics.RecordDBError(metrics.DBOperationInsert)
			log.WithError(err).Warnf("Discarding row %d of %s", i, tableName)
			continue
		}
		written++
	}
	return written, nil
}

// tableDDL builds the CREATE TABLE statement matching the frame's columns.
func tableDDL(tableName string, columns []frame.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col.Name}.Sanitize() + " " + sqlType(col.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{tableName}.Sanitize(), strings.Join(defs, ", "))
}

func sqlType(kind frame.Kind) string {
	switch kind {
	case frame.KindInt:
		return "bigint"
	case frame.KindFloat:
		return "double precision"
	case frame.KindTime:
		return "timestamptz"
	default:
		return "text"
	}
}

func columnNames(columns []frame.Column) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

// rowValues extracts row i of the frame as insert values, nil for nulls.
func rowValues(f *frame.Frame, i int) []interface{} {
	columns := f.Columns()
	values := make([]interface{}, len(columns))
	for c := range columns {
		if v, ok := columns[c].Value(i); ok {
			values[c] = v
		}
	}
	return values
}
