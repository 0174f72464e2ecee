package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"support-insights-go/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS atendimento (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	data                    TEXT,
	atendente               TEXT,
	telefone                TEXT,
	ticket                  TEXT,
	motivo                  TEXT,
	nota                    INTEGER,
	tempo_medio_atendimento TEXT,
	lead_scoring            REAL,
	churn                   REAL,
	upsell                  REAL,
	downsell                REAL,
	qualificacao_resumida   TEXT,
	resumo_atendimento      TEXT,
	qualificacao            TEXT,
	melhorias               TEXT,
	motivo_fechamento       TEXT,
	departamento            TEXT,
	avaliacao_ia            TEXT,
	historico_conversa      TEXT
);
CREATE INDEX IF NOT EXISTS idx_atendimento_data ON atendimento(data);
CREATE INDEX IF NOT EXISTS idx_atendimento_atendente ON atendimento(atendente);
CREATE INDEX IF NOT EXISTS idx_atendimento_ticket ON atendimento(ticket);
`

// sqliteTime is the stored date format; fixed width so text comparison orders correctly.
const sqliteTime = "2006-01-02T15:04:05Z"

var knownColumns = func() map[string]bool {
	m := make(map[string]bool, len(types.Columns))
	for _, c := range types.Columns {
		m[c] = true
	}
	return m
}()

// SQLite is a local Source backed by a SQLite database file.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens or creates the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s := &SQLite{conn: conn}
	if err := s.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLiteInMemory opens a private in-memory database, useful for testing.
func OpenSQLiteInMemory() (*SQLite, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)
	s := &SQLite{conn: conn}
	if err := s.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Migrate() error {
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Insert stores raw records. JSON columns are kept as text and parseable
// dates are rewritten in the stored format. Unknown keys are ignored.
func (s *SQLite) Insert(ctx context.Context, records []types.RawRecord) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, rec := range records {
		var cols, marks []string
		var args []any
		for _, c := range types.Columns {
			v, ok := rec[c]
			if !ok || (c == types.ColID && v == nil) {
				continue
			}
			cols = append(cols, c)
			marks = append(marks, "?")
			args = append(args, storedValue(c, v))
		}
		if len(cols) == 0 {
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", Table, strings.Join(cols, ", "), strings.Join(marks, ", "))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return n, fmt.Errorf("insert record %d: %w", n, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLite) Select(ctx context.Context, q Query) (Page, error) {
	cols := "*"
	if len(q.Columns) > 0 {
		for _, c := range q.Columns {
			if !knownColumns[c] {
				return Page{}, fmt.Errorf("unknown column %q", c)
			}
		}
		cols = strings.Join(q.Columns, ", ")
	}

	where, args, err := whereClause(q)
	if err != nil {
		return Page{}, err
	}

	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s DESC, id DESC LIMIT ? OFFSET ?", cols, Table, where, types.ColDate)
	rows, err := s.conn.QueryContext(ctx, stmt, append(args, limit, q.Offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return Page{}, err
	}
	page := Page{Records: records}

	if q.Count {
		row := s.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", Table, where), args...)
		if err := row.Scan(&page.Total); err != nil {
			return Page{}, fmt.Errorf("count: %w", err)
		}
	}
	return page, nil
}

func whereClause(q Query) (string, []any, error) {
	var conds []string
	var args []any
	for _, k := range sortedKeys(q.Eq) {
		if !knownColumns[k] {
			return "", nil, fmt.Errorf("unknown column %q", k)
		}
		conds = append(conds, k+" = ?")
		args = append(args, q.Eq[k])
	}
	if q.TicketLike != "" {
		conds = append(conds, types.ColTicket+" LIKE ?")
		args = append(args, "%"+q.TicketLike+"%")
	}
	if !q.From.IsZero() {
		conds = append(conds, types.ColDate+" >= ?")
		args = append(args, q.From.UTC().Format(sqliteTime))
	}
	if !q.To.IsZero() {
		conds = append(conds, types.ColDate+" <= ?")
		args = append(args, q.To.UTC().Format(sqliteTime))
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func scanRecords(rows *sql.Rows) ([]types.RawRecord, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []types.RawRecord
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(types.RawRecord, len(names))
		for i, n := range names {
			if b, ok := vals[i].([]byte); ok {
				rec[n] = string(b)
				continue
			}
			rec[n] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func storedValue(col string, v any) any {
	switch col {
	case types.ColAIData, types.ColConversationLog:
		if v == nil {
			return nil
		}
		if s, ok := v.(string); ok {
			return s
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	case types.ColDate:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format(sqliteTime)
		case string:
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05Z07", "2006-01-02 15:04:05", "2006-01-02"} {
				if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return ts.UTC().Format(sqliteTime)
				}
			}
			return t
		}
	}
	switch n := v.(type) {
	case json.Number:
		return n.String()
	case map[string]any, []any:
		b, _ := json.Marshal(n)
		return string(b)
	}
	return v
}
