package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists questions in the questions table; the question payload
// itself is stored as a JSON column, mirroring how the rest of the schema
// treats question-shaped data.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, userID string, rec Record) error {
	payload, err := json.Marshal(rec.Question)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions (id,user_id,subject,topic,qtype,payload_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (id) DO UPDATE SET subject=EXCLUDED.subject, topic=EXCLUDED.topic,
			qtype=EXCLUDED.qtype, payload_json=EXCLUDED.payload_json, updated_at=EXCLUDED.updated_at`,
		rec.Question.ID, userID, rec.Subject, rec.Topic, rec.Question.Type, string(payload), time.Now().Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, userID, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT subject,topic,payload_json FROM questions WHERE id=$1 AND user_id=$2`, id, userID)
	var rec Record
	var payload string
	if err := row.Scan(&rec.Subject, &rec.Topic, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Question); err != nil {
		return Record{}, fmt.Errorf("unmarshal question %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context, userID, subject string) ([]Record, error) {
	q := `SELECT subject,topic,payload_json FROM questions WHERE user_id=$1 ORDER BY created_at, id`
	args := []any{userID}
	if subject != "" {
		q = `SELECT subject,topic,payload_json FROM questions WHERE user_id=$1 AND subject=$2 ORDER BY created_at, id`
		args = append(args, subject)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.Subject, &rec.Topic, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Question); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
