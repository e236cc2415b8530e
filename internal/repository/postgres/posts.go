package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mathblog/internal/domain"
	"mathblog/pkg/db"
)

var postColumns = []string{
	"id",
	"title",
	"slug",
	"excerpt",
	"content",
	"published",
	"published_at",
	"created_at",
	"updated_at",
}

// PostRepository persists blog posts.
type PostRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Published && post.PublishedAt == nil {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	query := r.sb.
		Insert("posts").
		Columns("id", "title", "slug", "excerpt", "content", "published", "published_at").
		Values(post.ID, post.Title, post.Slug, post.Excerpt, post.Content, post.Published, post.PublishedAt).
		Suffix("RETURNING " + joinColumns(postColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Post{}, mapError("build create post sql", err)
	}

	created, err := scanPost(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Post{}, mapError("create post", err)
	}
	return created, nil
}

func (r *PostRepository) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.Published && post.PublishedAt == nil {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	query := r.sb.
		Update("posts").
		Set("title", post.Title).
		Set("slug", post.Slug).
		Set("excerpt", post.Excerpt).
		Set("content", post.Content).
		Set("published", post.Published).
		Set("published_at", post.PublishedAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": post.ID}).
		Suffix("RETURNING " + joinColumns(postColumns))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Post{}, mapError("build update post sql", err)
	}

	updated, err := scanPost(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Post{}, mapError("update post", err)
	}
	return updated, nil
}

// Delete removes a post and dead-letters any unsent sends that referenced
// it, in one transaction. Without this the FK's SET NULL would leave a
// pending send that can only fail with an empty body at dispatch.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cancel := r.sb.
			Update("newsletter_sends").
			Set("status", domain.SendStatusFailed).
			Where(sq.Eq{"post_id": id, "sent_at": nil})
		sqlStr, args, err := cancel.ToSql()
		if err != nil {
			return mapError("build cancel sends sql", err)
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return mapError("cancel sends for post", err)
		}

		sqlStr, args, err = r.sb.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return mapError("build delete post sql", err)
		}
		tag, err := tx.Exec(ctx, sqlStr, args...)
		if err != nil {
			return mapError("delete post", err)
		}
		if tag.RowsAffected() == 0 {
			return mapError("delete post", errNoRowsAffected)
		}
		return nil
	})
}

func (r *PostRepository) Get(ctx context.Context, id uuid.UUID) (domain.Post, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	return r.getBy(ctx, sq.Eq{"slug": slug})
}

func (r *PostRepository) getBy(ctx context.Context, pred sq.Eq) (domain.Post, error) {
	query := r.sb.
		Select(postColumns...).
		From("posts").
		Where(pred)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Post{}, mapError("build get post sql", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return domain.Post{}, mapError("get post", err)
	}
	return post, nil
}

// List returns posts, newest first. With publishedOnly set, drafts are
// excluded.
func (r *PostRepository) List(ctx context.Context, publishedOnly bool) ([]domain.Post, error) {
	query := r.sb.
		Select(postColumns...).
		From("posts").
		OrderBy("created_at DESC")
	if publishedOnly {
		query = query.Where(sq.Eq{"published": true})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, mapError("build list posts sql", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list posts", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, mapError("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list posts", err)
	}
	return posts, nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Content,
		&p.Published,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
