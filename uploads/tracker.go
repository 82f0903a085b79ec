// Package uploads keeps a ledger of the files sent to the upload endpoint
// so that files never attached to a saved entity can be found later.
package uploads

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"marketplace-portal/helper"
	"marketplace-portal/repository"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix marks the redis keys whose expiry means "never attached".
const KeyPrefix = "upload:"

// Keys is the subset of *redis.Client the tracker needs.
type Keys interface {
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Sender performs the actual upload, normally *apiclient.Client.
type Sender interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Tracker uploads files and records them as pending until Commit.
type Tracker struct {
	sender Sender
	db     *sql.DB
	keys   Keys
	ttl    time.Duration
}

func NewTracker(sender Sender, db *sql.DB, keys Keys, ttl time.Duration) *Tracker {
	return &Tracker{sender: sender, db: db, keys: keys, ttl: ttl}
}

func Key(id int) string {
	return KeyPrefix + strconv.Itoa(id)
}

// ParseKey returns the upload id of an expired key, if it is one of ours.
func ParseKey(key string) (int, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(key, KeyPrefix))
	if err != nil {
		return 0, false
	}
	return id, true
}

// Upload sends the file and records it. The ledger is best effort: a
// failure to record is logged and the url is still returned.
func (t *Tracker) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	url, err := t.sender.Upload(ctx, filename, data)
	if err != nil {
		return "", err
	}

	actor := ""
	if s, err := helper.SessionFromContext(ctx); err == nil {
		actor = s.UserInfo.ID.String()
	}

	id, err := repository.InsertUpload(ctx, t.db, url, actor)
	if err != nil {
		slog.Error("failed to record upload", "url", url, "err", err)
		return url, nil
	}
	if err := t.keys.SetEx(ctx, Key(id), url, t.ttl).Err(); err != nil {
		slog.Error("failed to set upload ttl", "upload_id", id, "err", err)
	}
	slog.Info("upload recorded", "upload_id", id, "actor", actor, "size", len(data))
	return url, nil
}

// Commit marks urls as attached to a saved entity and drops their expiry
// keys.
func (t *Tracker) Commit(ctx context.Context, urls []string) error {
	ids, err := repository.MarkUploadsAttached(ctx, t.db, urls)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, Key(id))
	}
	return t.keys.Del(ctx, keys...).Err()
}
