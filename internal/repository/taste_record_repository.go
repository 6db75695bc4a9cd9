package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/taste-records-go/internal/models"
)

// TasteRecordRepository handles database operations for taste records and their tags
type TasteRecordRepository struct {
	db DBTX
}

// NewTasteRecordRepository creates a new taste record repository
func NewTasteRecordRepository(db DBTX) *TasteRecordRepository {
	return &TasteRecordRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *TasteRecordRepository) WithTx(tx *sql.Tx) *TasteRecordRepository {
	return &TasteRecordRepository{db: tx}
}

const tasteRecordColumns = `id, user_id, place_name, category, rating, memo, lat, lng, visited_at, created_at, updated_at`

func scanTasteRecord(row interface{ Scan(...interface{}) error }, t *models.TasteRecord) error {
	var lat, lng sql.NullFloat64
	err := row.Scan(&t.ID, &t.UserID, &t.PlaceName, &t.Category, &t.Rating, &t.Memo,
		&lat, &lng, &t.VisitedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}
	if lat.Valid && lng.Valid {
		t.Lat, t.Lng = &lat.Float64, &lng.Float64
	}
	return nil
}

// Create inserts a record without its tags and returns its ID
func (r *TasteRecordRepository) Create(ctx context.Context, t *models.TasteRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO taste_records (user_id, place_name, category, rating, memo, lat, lng, visited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.PlaceName, t.Category, t.Rating, t.Memo, t.Lat, t.Lng, t.VisitedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert taste record: %w", err)
	}
	return res.LastInsertId()
}

// Update overwrites the editable fields of a record
func (r *TasteRecordRepository) Update(ctx context.Context, t *models.TasteRecord) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE taste_records
		 SET place_name = ?, category = ?, rating = ?, memo = ?, lat = ?, lng = ?, visited_at = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		t.PlaceName, t.Category, t.Rating, t.Memo, t.Lat, t.Lng, t.VisitedAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update taste record: %w", err)
	}
	return nil
}

// Delete removes a record; tags go with it through the foreign key
func (r *TasteRecordRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM taste_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete taste record: %w", err)
	}
	return nil
}

// ReplaceTags sets the tag list of a record
func (r *TasteRecordRepository) ReplaceTags(ctx context.Context, recordID int64, tags []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM taste_record_tags WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	for _, tag := range tags {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO taste_record_tags (record_id, tag) VALUES (?, ?)`, recordID, tag); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a record with its tags, or nil if none exists
func (r *TasteRecordRepository) GetByID(ctx context.Context, id int64) (*models.TasteRecord, error) {
	var t models.TasteRecord
	err := scanTasteRecord(r.db.QueryRowContext(ctx, "SELECT "+tasteRecordColumns+" FROM taste_records WHERE id = ?", id), &t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get taste record: %w", err)
	}

	tags, err := r.tagsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	t.Tags = tagsOrEmpty(tags[id])
	return &t, nil
}

// List retrieves records with filtering and pagination
func (r *TasteRecordRepository) List(ctx context.Context, filter models.TasteRecordFilter) ([]models.TasteRecord, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		conditions = append(conditions, "id IN (SELECT record_id FROM taste_record_tags WHERE tag = ?)")
		args = append(args, filter.Tag)
	}
	where := whereClause(conditions)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM taste_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count taste records: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT " + tasteRecordColumns + " FROM taste_records" + where + " ORDER BY visited_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query taste records: %w", err)
	}
	defer rows.Close()

	records := []models.TasteRecord{}
	var ids []int64
	for rows.Next() {
		var t models.TasteRecord
		if err := scanTasteRecord(rows, &t); err != nil {
			return nil, 0, fmt.Errorf("failed to scan taste record: %w", err)
		}
		records = append(records, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range records {
		records[i].Tags = tagsOrEmpty(tags[records[i].ID])
	}

	return records, total, nil
}

func (r *TasteRecordRepository) tagsFor(ctx context.Context, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT record_id, tag FROM taste_record_tags WHERE record_id IN ("+placeholders+") ORDER BY tag", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// CategoryStats counts records and averages ratings per category.
// A zero userID aggregates across all users.
func (r *TasteRecordRepository) CategoryStats(ctx context.Context, userID int64) ([]models.CategoryCount, error) {
	query := `SELECT category, COUNT(*), AVG(rating) FROM taste_records`
	var args []interface{}
	if userID > 0 {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` GROUP BY category ORDER BY COUNT(*) DESC, category`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	stats := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count, &c.AvgRating); err != nil {
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

// TopTags returns the most used tags. A zero userID aggregates across all users.
func (r *TasteRecordRepository) TopTags(ctx context.Context, userID int64, limit int) ([]models.TagCount, error) {
	query := `SELECT t.tag, COUNT(*) FROM taste_record_tags t JOIN taste_records r ON r.id = t.record_id`
	var args []interface{}
	if userID > 0 {
		query += ` WHERE r.user_id = ?`
		args = append(args, userID)
	}
	query += ` GROUP BY t.tag ORDER BY COUNT(*) DESC, t.tag LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tags: %w", err)
	}
	defer rows.Close()

	tags := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}
