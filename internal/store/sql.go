package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/types"
)

// QueryShape selects the SQL strategy used for the completion-event scan.
// The shapes are contract-equivalent; they exist so the storebench harness
// can compare them against real data.
type QueryShape string

const (
	// ShapeTwoPhase scans queue_log alone; CDR filtering happens in a
	// second lookup by linked id.
	ShapeTwoPhase QueryShape = "twophase"
	// ShapeExists pre-filters queue_log rows with an EXISTS subquery
	// against answered CDR rows.
	ShapeExists QueryShape = "exists"
)

// SQLConfig configures the SQL-backed event store.
type SQLConfig struct {
	Driver       string // "mysql" or "postgres"
	DSN          string
	Shape        QueryShape
	MaxOpenConns int
}

// SQLStore implements EventStore over an Asterisk-style queue_log and cdr
// schema in MySQL or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
	shape  QueryShape
	logger zerolog.Logger
}

// OpenSQL opens the database and verifies connectivity.
func OpenSQL(ctx context.Context, cfg SQLConfig, logger zerolog.Logger) (*SQLStore, error) {
	if cfg.Driver != "mysql" && cfg.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB driver %q", cfg.Driver)
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	shape := cfg.Shape
	if shape == "" {
		shape = ShapeTwoPhase
	}

	logger.Info().
		Str("driver", cfg.Driver).
		Str("query_shape", string(shape)).
		Msg("event store connected")

	return &SQLStore{
		db:     db,
		driver: cfg.Driver,
		shape:  shape,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Shape returns the configured completion-scan query shape.
func (s *SQLStore) Shape() QueryShape {
	return s.shape
}

func (s *SQLStore) GetQueueEvents(ctx context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error) {
	query := `SELECT time, event, callid, queuename, agent, data1, data2, data3, data4, data5
		FROM queue_log
		WHERE time >= ? AND time < ?`
	args := []interface{}{start, end}
	if len(queues) > 0 {
		query += " AND queuename IN (" + placeholders(len(queues)) + ")"
		for _, q := range queues {
			args = append(args, q)
		}
	}
	query += " ORDER BY time ASC"

	return s.queryEvents(ctx, query, args)
}

func (s *SQLStore) GetCompletionEvents(ctx context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error) {
	var query string
	switch s.shape {
	case ShapeExists:
		query = `SELECT ql.time, ql.event, ql.callid, ql.queuename, ql.agent,
				ql.data1, ql.data2, ql.data3, ql.data4, ql.data5
			FROM queue_log ql
			WHERE ql.time >= ? AND ql.time < ?
			  AND ql.event IN ('COMPLETECALLER','COMPLETEAGENT')
			  AND EXISTS (
				SELECT 1 FROM cdr c
				WHERE c.linkedid = ql.callid
				  AND c.disposition = 'ANSWERED'
				  AND c.billsec >= 5
			  )`
	default:
		query = `SELECT time, event, callid, queuename, agent,
				data1, data2, data3, data4, data5
			FROM queue_log
			WHERE time >= ? AND time < ?
			  AND event IN ('COMPLETECALLER','COMPLETEAGENT')`
	}
	args := []interface{}{start, end}
	if len(queues) > 0 {
		query += " AND queuename IN (" + placeholders(len(queues)) + ")"
		for _, q := range queues {
			args = append(args, q)
		}
	}
	query += " ORDER BY time ASC"

	return s.queryEvents(ctx, query, args)
}

func (s *SQLStore) GetCDRsByIDs(ctx context.Context, ids []string) ([]types.CallDetailRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT uniqueid, linkedid, calldate, src, dst, disposition,
			billsec, duration, recordingfile, channel, outbound_cnum
		FROM cdr
		WHERE linkedid IN (` + placeholders(len(ids)) + `)
		ORDER BY calldate ASC`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return s.queryCDRs(ctx, query, args)
}

func (s *SQLStore) GetCDRsByDateRange(ctx context.Context, start, end time.Time, minLength int) ([]types.CallDetailRecord, error) {
	query := `SELECT uniqueid, linkedid, calldate, src, dst, disposition,
			billsec, duration, recordingfile, channel, outbound_cnum
		FROM cdr
		WHERE calldate >= ? AND calldate < ?
		  AND LENGTH(src) >= ?
		ORDER BY calldate ASC`
	return s.queryCDRs(ctx, query, []interface{}{start, end, minLength})
}

func (s *SQLStore) queryEvents(ctx context.Context, query string, args []interface{}) ([]types.QueueEvent, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: queue_log query: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var events []types.QueueEvent
	for rows.Next() {
		var (
			ts                              sql.NullString
			event, callID, queueName, agent sql.NullString
			d1, d2, d3, d4, d5              sql.NullString
		)
		if err := rows.Scan(&ts, &event, &callID, &queueName, &agent, &d1, &d2, &d3, &d4, &d5); err != nil {
			return nil, fmt.Errorf("scan queue_log row: %w", err)
		}
		ev := types.QueueEvent{
			EventType: types.QueueEventType(event.String),
			CallID:    callID.String,
			QueueName: queueName.String,
			Agent:     agent.String,
			Data1:     d1.String,
			Data2:     d2.String,
			Data3:     d3.String,
			Data4:     d4.String,
			Data5:     d5.String,
		}
		// queue_log timestamps are either datetimes or epoch strings
		// depending on the logger backend; an unparsable one leaves
		// the field zero rather than dropping the row.
		if t, ok := parseLogTime(ts.String); ok {
			ev.Time = t
		} else if ts.Valid {
			s.logger.Debug().Str("time", ts.String).Str("callid", ev.CallID).Msg("unparsable queue_log time")
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: queue_log rows: %v", ErrUnavailable, err)
	}
	return events, nil
}

func (s *SQLStore) queryCDRs(ctx context.Context, query string, args []interface{}) ([]types.CallDetailRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: cdr query: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []types.CallDetailRecord
	for rows.Next() {
		var (
			uniqueID, linkedID, src, dst, disp sql.NullString
			recording, channel, outbound       sql.NullString
			billsec, duration                  sql.NullInt64
			callDate                           sql.NullTime
		)
		if err := rows.Scan(&uniqueID, &linkedID, &callDate, &src, &dst, &disp,
			&billsec, &duration, &recording, &channel, &outbound); err != nil {
			return nil, fmt.Errorf("scan cdr row: %w", err)
		}
		records = append(records, types.CallDetailRecord{
			UniqueID:             uniqueID.String,
			LinkedID:             linkedID.String,
			CallDate:             callDate.Time,
			Source:               src.String,
			Destination:          dst.String,
			Disposition:          disp.String,
			BillableSeconds:      int(billsec.Int64),
			Duration:             int(duration.Int64),
			RecordingFile:        recording.String,
			Channel:              channel.String,
			OutboundCallerNumber: outbound.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: cdr rows: %v", ErrUnavailable, err)
	}
	return records, nil
}

// rebind converts `?` placeholders to `$n` for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// parseLogTime accepts the two timestamp encodings seen in queue_log
// tables: a SQL datetime or a fractional epoch string.
func parseLogTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec), true
	}
	return time.Time{}, false
}
