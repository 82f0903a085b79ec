package repository

import (
	"context"
	"database/sql"

	"marketplace-portal/model"
)

func InsertActivity(ctx context.Context, db *sql.DB, a model.Activity) (int, error) {
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO portal_activity (actor_id, screen, action, entity_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.ActorID, a.Screen, a.Action, a.EntityID,
	).Scan(&id)
	return id, err
}

// ListActivity returns the actor's latest activity, newest first. An empty
// actorID lists everyone's.
func ListActivity(db *sql.DB, actorID string, limit int) ([]model.Activity, error) {
	rows, err := db.Query(
		`SELECT id, actor_id, screen, action, entity_id, created_at FROM portal_activity WHERE ($1 = '' OR actor_id = $1) ORDER BY created_at DESC, id DESC LIMIT $2`,
		actorID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Screen, &a.Action, &a.EntityID, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}
