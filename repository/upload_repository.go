package repository

import (
	"context"
	"database/sql"
	"log"

	"marketplace-portal/model"

	"github.com/lib/pq"
)

func InsertUpload(ctx context.Context, db *sql.DB, url, actorID string) (int, error) {
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO portal_uploads (url, actor_id, status) VALUES ($1, $2, $3) RETURNING id`,
		url, actorID, model.UploadPending,
	).Scan(&id)
	return id, err
}

// MarkUploadsAttached flags the pending uploads with one of urls as used by
// a saved entity and returns their ids.
func MarkUploadsAttached(ctx context.Context, db *sql.DB, urls []string) ([]int, error) {
	rows, err := db.QueryContext(ctx,
		`UPDATE portal_uploads SET status = $1 WHERE status = $2 AND url = ANY($3) RETURNING id`,
		model.UploadAttached, model.UploadPending, pq.Array(urls),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkUploadOrphaned flags an upload that was never attached. It reports
// false when the upload had already been attached.
func MarkUploadOrphaned(db *sql.DB, id int) (bool, error) {
	res, err := db.Exec(
		`UPDATE portal_uploads SET status = $1 WHERE id = $2 AND status = $3`,
		model.UploadOrphaned, id, model.UploadPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		log.Printf("[worker] upload_id=%d marked orphaned", id)
	}
	return n > 0, nil
}

func ListUploadsByStatus(db *sql.DB, status string, limit int) ([]model.Upload, error) {
	rows, err := db.Query(
		`SELECT id, url, actor_id, status, created_at FROM portal_uploads WHERE status = $1 ORDER BY id DESC LIMIT $2`,
		status, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []model.Upload{}
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(&u.ID, &u.URL, &u.ActorID, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return uploads, nil
}
