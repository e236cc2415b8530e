package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mathblog/internal/domain"
)

var sendColumns = []string{
	"id",
	"subject",
	"body_html",
	"body_text",
	"post_id",
	"status",
	"attempts",
	"scheduled_at",
	"sent_at",
	"created_at",
}

// SendRepository persists newsletter send records.
type SendRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSendRepository(db *pgxpool.Pool) *SendRepository {
	return &SendRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new send record. Status is derived from the scheduled
// time: records with a future scheduled_at start as scheduled, everything
// else starts as pending.
func (r *SendRepository) Create(ctx context.Context, send domain.Send) (domain.Send, error) {
	if send.ID == uuid.Nil {
		send.ID = uuid.New()
	}
	if send.Status == "" {
		send.Status = domain.SendStatusPending
		if send.ScheduledAt != nil && send.ScheduledAt.After(time.Now()) {
			send.Status = domain.SendStatusScheduled
		}
	}

	query := r.sb.
		Insert("newsletter_sends").
		Columns("id", "subject", "body_html", "body_text", "post_id", "status", "scheduled_at").
		Values(send.ID, send.Subject, send.BodyHTML, send.BodyText, send.PostID, send.Status, send.ScheduledAt).
		Suffix("RETURNING " + joinColumns(sendColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Send{}, mapError("build create send sql", err)
	}

	created, err := scanSend(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Send{}, mapError("create send", err)
	}
	return created, nil
}

func (r *SendRepository) Get(ctx context.Context, id uuid.UUID) (domain.Send, error) {
	query := r.sb.
		Select(sendColumns...).
		From("newsletter_sends").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Send{}, mapError("build get send sql", err)
	}

	send, err := scanSend(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Send{}, mapError("get send", err)
	}
	return send, nil
}

// Claim atomically transitions a record to sending. The WHERE clause is the
// concurrency guard: only one of two racing processors sees an affected row.
func (r *SendRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	query := r.sb.
		Update("newsletter_sends").
		Set("status", domain.SendStatusSending).
		Where(sq.Eq{
			"id":      id,
			"sent_at": nil,
		}).
		Where(sq.Eq{"status": []domain.SendStatus{domain.SendStatusPending, domain.SendStatusScheduled}})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, mapError("build claim send sql", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, mapError("claim send", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release returns a claimed record to pending and counts the failed pass.
func (r *SendRepository) Release(ctx context.Context, id uuid.UUID) error {
	query := r.sb.
		Update("newsletter_sends").
		Set("status", domain.SendStatusPending).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{
			"id":     id,
			"status": domain.SendStatusSending,
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return mapError("build release send sql", err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return mapError("release send", err)
	}
	return nil
}

func (r *SendRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := r.sb.
		Update("newsletter_sends").
		Set("status", domain.SendStatusSent).
		Set("sent_at", at).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return mapError("build mark sent sql", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return mapError("mark sent", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("mark sent", errNoRowsAffected)
	}
	return nil
}

// MarkFailed dead-letters a record. Sent records are never touched.
func (r *SendRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := r.sb.
		Update("newsletter_sends").
		Set("status", domain.SendStatusFailed).
		Where(sq.Eq{
			"id":      id,
			"sent_at": nil,
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return mapError("build mark failed sql", err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return mapError("mark failed", err)
	}
	return nil
}

// dueQuery selects unsent scheduled records whose scheduled time has passed.
// Records without a scheduled time are never due: a failed immediate send is
// re-dispatched by an explicit admin action, not by the poller.
func (r *SendRepository) dueQuery(now time.Time) sq.SelectBuilder {
	return r.sb.
		Select("id").
		From("newsletter_sends").
		Where(sq.Eq{
			"sent_at": nil,
			"status":  []domain.SendStatus{domain.SendStatusPending, domain.SendStatusScheduled},
		}).
		Where(sq.LtOrEq{"scheduled_at": now}).
		OrderBy("scheduled_at ASC")
}

// ListDue returns ids of past-due scheduled records, oldest first.
func (r *SendRepository) ListDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	sqlStr, args, err := r.dueQuery(now).ToSql()
	if err != nil {
		return nil, mapError("build list due sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list due sends", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("scan due send", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list due sends", err)
	}
	return ids, nil
}

// List returns all send records, newest first.
func (r *SendRepository) List(ctx context.Context) ([]domain.Send, error) {
	query := r.sb.
		Select(sendColumns...).
		From("newsletter_sends").
		OrderBy("created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, mapError("build list sends sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list sends", err)
	}
	defer rows.Close()

	var sends []domain.Send
	for rows.Next() {
		send, err := scanSend(rows)
		if err != nil {
			return nil, mapError("scan send", err)
		}
		sends = append(sends, send)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list sends", err)
	}
	return sends, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSend(row rowScanner) (domain.Send, error) {
	var s domain.Send
	err := row.Scan(
		&s.ID,
		&s.Subject,
		&s.BodyHTML,
		&s.BodyText,
		&s.PostID,
		&s.Status,
		&s.Attempts,
		&s.ScheduledAt,
		&s.SentAt,
		&s.CreatedAt,
	)
	return s, err
}
