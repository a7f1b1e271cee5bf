package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"firstwatch/internal/model"
)

// Stats contains aggregate database statistics.
type Stats struct {
	Runs      int
	Incidents int
	Posts     int
	LastRunAt *string
}

// InsertRun stores an assembled incident list as a new run and
// returns the run id. Incident order is preserved via position.
func (db *DB) InsertRun(incidents []model.Incident) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	postCount := 0
	for _, inc := range incidents {
		postCount += len(inc.Discussion.Sources)
	}

	result, err := tx.Exec(
		"INSERT INTO runs (incident_count, post_count) VALUES (?, ?)",
		len(incidents), postCount,
	)
	if err != nil {
		return 0, err
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for pos, inc := range incidents {
		var lat, lng *float64
		if inc.Coordinates != nil {
			lat, lng = &inc.Coordinates.Lat, &inc.Coordinates.Lng
		}

		var citationsJSON *string
		if len(inc.Discussion.Citations) > 0 {
			data, err := json.Marshal(inc.Discussion.Citations)
			if err != nil {
				return 0, err
			}
			s := string(data)
			citationsJSON = &s
		}

		e := inc.Discussion.Engagement
		if _, err := tx.Exec(
			`INSERT INTO incidents
			(id, run_id, position, title, severity, location, timestamp, description,
			lat, lng, status, summary, citations, likes, reshares, replies, quotes, views)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inc.ID, runID, pos, inc.Title, string(inc.Severity), inc.Location,
			inc.Timestamp.Format(time.RFC3339), inc.Description,
			lat, lng, inc.Discussion.Status, inc.Discussion.Summary, citationsJSON,
			e.Likes, e.Reshares, e.Replies, e.Quotes, e.Views,
		); err != nil {
			return 0, err
		}

		for _, p := range inc.Discussion.Sources {
			if _, err := tx.Exec(
				`INSERT INTO incident_posts
				(incident_id, post_id, text, username, display_name, verified, url,
				timestamp, likes, reshares, replies, quotes, views, source)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				inc.ID, p.ID, p.Text, p.Author.Username, p.Author.DisplayName,
				boolToInt(p.Author.Verified), p.URL, p.Timestamp.Format(time.RFC3339),
				p.Engagement.Likes, p.Engagement.Reshares, p.Engagement.Replies,
				p.Engagement.Quotes, p.Engagement.Views, p.Source,
			); err != nil {
				return 0, err
			}
		}
	}

	return runID, tx.Commit()
}

// LatestRunID returns the most recent run id, or 0 when no run has
// been stored yet.
func (db *DB) LatestRunID() (int64, error) {
	var id int64
	err := db.conn.QueryRow("SELECT id FROM runs ORDER BY id DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

// IncidentsForRun returns the incidents of a run in stored order.
func (db *DB) IncidentsForRun(runID int64) ([]model.Incident, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, severity, location, timestamp, description, lat, lng,
		status, summary, citations, likes, reshares, replies, quotes, views
		FROM incidents WHERE run_id = ? ORDER BY position`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range incidents {
		posts, err := db.postsForIncident(incidents[i].ID)
		if err != nil {
			return nil, err
		}
		incidents[i].Discussion.Sources = posts
	}
	return incidents, nil
}

// Incident returns one stored incident by id, or nil when absent.
func (db *DB) Incident(id string) (*model.Incident, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, severity, location, timestamp, description, lat, lng,
		status, summary, citations, likes, reshares, replies, quotes, views
		FROM incidents WHERE id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	inc, err := scanIncident(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	posts, err := db.postsForIncident(inc.ID)
	if err != nil {
		return nil, err
	}
	inc.Discussion.Sources = posts
	return &inc, nil
}

// GetStats returns aggregate store statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&s.Runs); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM incidents").Scan(&s.Incidents); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM incident_posts").Scan(&s.Posts); err != nil {
		return nil, err
	}
	err := db.conn.QueryRow("SELECT created_at FROM runs ORDER BY id DESC LIMIT 1").Scan(&s.LastRunAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return s, nil
}

func scanIncident(rows *sql.Rows) (model.Incident, error) {
	var inc model.Incident
	var severity, ts string
	var lat, lng *float64
	var citationsJSON *string
	var e model.Engagement

	if err := rows.Scan(&inc.ID, &inc.Title, &severity, &inc.Location, &ts,
		&inc.Description, &lat, &lng, &inc.Discussion.Status, &inc.Discussion.Summary,
		&citationsJSON, &e.Likes, &e.Reshares, &e.Replies, &e.Quotes, &e.Views); err != nil {
		return model.Incident{}, err
	}

	inc.Severity = model.Severity(severity)
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		inc.Timestamp = t
	}
	if lat != nil && lng != nil {
		inc.Coordinates = &model.Coordinates{Lat: *lat, Lng: *lng}
	}
	if citationsJSON != nil {
		if err := json.Unmarshal([]byte(*citationsJSON), &inc.Discussion.Citations); err != nil {
			inc.Discussion.Citations = nil
		}
	}
	inc.Discussion.Engagement = e
	return inc, nil
}

func (db *DB) postsForIncident(incidentID string) ([]model.Post, error) {
	rows, err := db.conn.Query(
		`SELECT post_id, text, username, display_name, verified, url, timestamp,
		likes, reshares, replies, quotes, views, source
		FROM incident_posts WHERE incident_id = ?`, incidentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var verified int
		var ts string
		if err := rows.Scan(&p.ID, &p.Text, &p.Author.Username, &p.Author.DisplayName,
			&verified, &p.URL, &ts, &p.Engagement.Likes, &p.Engagement.Reshares,
			&p.Engagement.Replies, &p.Engagement.Quotes, &p.Engagement.Views,
			&p.Source); err != nil {
			return nil, err
		}
		p.Author.Verified = verified != 0
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.Timestamp = t
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
