package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mathblog/internal/domain"
)

var commentColumns = []string{
	"id",
	"post_id",
	"author_name",
	"body",
	"created_at",
}

// CommentRepository persists reader comments.
type CommentRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	query := r.sb.
		Insert("comments").
		Columns("id", "post_id", "author_name", "body").
		Values(comment.ID, comment.PostID, comment.AuthorName, comment.Body).
		Suffix("RETURNING " + joinColumns(commentColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Comment{}, mapError("build create comment sql", err)
	}

	created, err := scanComment(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Comment{}, mapError("create comment", err)
	}
	return created, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	query := r.sb.
		Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"post_id": postID}).
		OrderBy("created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, mapError("build list comments sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list comments", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, mapError("scan comment", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list comments", err)
	}
	return comments, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.sb.Delete("comments").Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return mapError("build delete comment sql", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return mapError("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete comment", errNoRowsAffected)
	}
	return nil
}

func scanComment(row rowScanner) (domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.AuthorName,
		&c.Body,
		&c.CreatedAt,
	)
	return c, err
}
