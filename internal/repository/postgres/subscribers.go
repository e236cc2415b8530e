package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mathblog/internal/domain"
)

var subscriberColumns = []string{
	"id",
	"email",
	"confirmation_token",
	"confirmed_at",
	"created_at",
}

// SubscriberRepository persists newsletter subscribers.
type SubscriberRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSubscriberRepository(db *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ConfirmedEmails returns addresses with verified opt-in, in subscription
// order for deterministic batch composition.
func (r *SubscriberRepository) ConfirmedEmails(ctx context.Context) ([]string, error) {
	query := r.sb.
		Select("email").
		From("newsletter_subscribers").
		Where(sq.NotEq{"confirmed_at": nil}).
		OrderBy("created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, mapError("build confirmed emails sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("confirmed emails", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, mapError("scan email", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("confirmed emails", err)
	}
	return emails, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, sub domain.Subscriber) (domain.Subscriber, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	query := r.sb.
		Insert("newsletter_subscribers").
		Columns("id", "email", "confirmation_token", "confirmed_at").
		Values(sub.ID, sub.Email, sub.ConfirmationToken, sub.ConfirmedAt).
		Suffix("RETURNING " + joinColumns(subscriberColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Subscriber{}, mapError("build create subscriber sql", err)
	}

	created, err := scanSubscriber(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Subscriber{}, mapError("create subscriber", err)
	}
	return created, nil
}

func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	query := r.sb.
		Select(subscriberColumns...).
		From("newsletter_subscribers").
		Where(sq.Eq{"email": email})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Subscriber{}, mapError("build get subscriber sql", err)
	}

	sub, err := scanSubscriber(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Subscriber{}, mapError("get subscriber", err)
	}
	return sub, nil
}

// ConfirmByToken completes opt-in for the matching unconfirmed subscriber.
// A spent or unknown token maps to domain.ErrNotFound.
func (r *SubscriberRepository) ConfirmByToken(ctx context.Context, token string, at time.Time) (domain.Subscriber, error) {
	query := r.sb.
		Update("newsletter_subscribers").
		Set("confirmed_at", at).
		Where(sq.Eq{
			"confirmation_token": token,
			"confirmed_at":       nil,
		}).
		Suffix("RETURNING " + joinColumns(subscriberColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Subscriber{}, mapError("build confirm subscriber sql", err)
	}

	sub, err := scanSubscriber(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Subscriber{}, mapError("confirm subscriber", err)
	}
	return sub, nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.sb.Delete("newsletter_subscribers").Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return mapError("build delete subscriber sql", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return mapError("delete subscriber", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete subscriber", errNoRowsAffected)
	}
	return nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]domain.Subscriber, error) {
	query := r.sb.
		Select(subscriberColumns...).
		From("newsletter_subscribers").
		OrderBy("created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, mapError("build list subscribers sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list subscribers", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, mapError("scan subscriber", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list subscribers", err)
	}
	return subs, nil
}

func scanSubscriber(row rowScanner) (domain.Subscriber, error) {
	var s domain.Subscriber
	err := row.Scan(
		&s.ID,
		&s.Email,
		&s.ConfirmationToken,
		&s.ConfirmedAt,
		&s.CreatedAt,
	)
	return s, err
}
