package database

import (
	"database/sql"
	"errors"
	"fmt"

	"real-estate-site/internal/editor"
	"real-estate-site/internal/models"

	_ "github.com/lib/pq"
)

type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the tables if they don't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		location VARCHAR(200) NOT NULL,
		price DECIMAL(12, 2) NOT NULL,
		main_image VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS property_images (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT NOT NULL REFERENCES properties(id),
		file_name VARCHAR(255) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		email VARCHAR(255),
		role INTEGER NOT NULL DEFAULT 1,
		status INTEGER NOT NULL DEFAULT 1,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		blocked_until TIMESTAMP,
		permanently_blocked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS delete_logs (
		id BIGSERIAL PRIMARY KEY,
		property_id BIGINT,
		name TEXT,
		file_name VARCHAR(255),
		reason VARCHAR(50) NOT NULL,
		deleted_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_property_images_property_id ON property_images(property_id);
	CREATE INDEX IF NOT EXISTS idx_delete_logs_deleted_at ON delete_logs(deleted_at DESC);
	`
	_, err := db.conn.Exec(query)
	return err
}

// Create persists a new property and its gallery rows in one transaction.
func (db *DB) Create(p *models.Property, gallery []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO properties (name, description, location, price, main_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Location, p.Price, p.MainImage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertGalleryRows(tx, p.ID, gallery); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.Gallery = append([]string(nil), gallery...)
	return nil
}

// GetByID retrieves a property and its gallery by ID
func (db *DB) GetByID(id int64) (*models.Property, error) {
	var p models.Property
	err := db.conn.QueryRow(`
		SELECT id, name, description, location, price, main_image, created_at, updated_at
		FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Location, &p.Price, &p.MainImage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, editor.ErrNotFound
		}
		return nil, err
	}

	gallery, err := db.galleryFor(id)
	if err != nil {
		return nil, err
	}
	p.Gallery = gallery
	return &p, nil
}

// List retrieves all properties, newest first, with galleries attached.
func (db *DB) List() ([]models.Property, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, description, location, price, main_image, created_at, updated_at
		FROM properties
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Location, &p.Price, &p.MainImage, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Gallery = []string{}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	imgRows, err := db.conn.Query(`
		SELECT property_id, file_name FROM property_images ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()

	byProperty := make(map[int64][]string)
	for imgRows.Next() {
		var propertyID int64
		var fileName string
		if err := imgRows.Scan(&propertyID, &fileName); err != nil {
			return nil, err
		}
		byProperty[propertyID] = append(byProperty[propertyID], fileName)
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}
	for i := range properties {
		if gallery, ok := byProperty[properties[i].ID]; ok {
			properties[i].Gallery = gallery
		}
	}

	return properties, nil
}

// Update persists scalar fields and replaces the gallery rows in one
// transaction.
func (db *DB) Update(p *models.Property, gallery []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE properties
		SET name = $1, description = $2, location = $3, price = $4, main_image = $5, updated_at = NOW()
		WHERE id = $6`,
		p.Name, p.Description, p.Location, p.Price, p.MainImage, p.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return editor.ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM property_images WHERE property_id = $1`, p.ID); err != nil {
		return err
	}
	if err := insertGalleryRows(tx, p.ID, gallery); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.Gallery = append([]string(nil), gallery...)
	return nil
}

// Delete removes the property row, its gallery rows, and writes the delete
// log entry in one transaction.
func (db *DB) Delete(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRow(`SELECT name FROM properties WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return editor.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(`DELETE FROM property_images WHERE property_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM properties WHERE id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO delete_logs (property_id, name, reason) VALUES ($1, $2, $3)`,
		id, name, models.DeleteReasonManual); err != nil {
		return err
	}

	return tx.Commit()
}

// ReferencedImageFiles returns every filename some property still points at.
func (db *DB) ReferencedImageFiles() ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT main_image FROM properties
		UNION ALL
		SELECT file_name FROM property_images`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LogFileDeletion records an orphan sweep deletion
func (db *DB) LogFileDeletion(fileName string) error {
	_, err := db.conn.Exec(`
		INSERT INTO delete_logs (file_name, reason) VALUES ($1, $2)`,
		fileName, models.DeleteReasonOrphanSweep)
	return err
}

// RecentDeleteLogs returns the latest delete log entries
func (db *DB) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	rows, err := db.conn.Query(`
		SELECT id, COALESCE(property_id, 0), COALESCE(name, ''), COALESCE(file_name, ''), reason, deleted_at
		FROM delete_logs
		ORDER BY deleted_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.DeleteLog
	for rows.Next() {
		var l models.DeleteLog
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.Name, &l.FileName, &l.Reason, &l.DeletedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRow(`
		SELECT id, username, password, COALESCE(email, ''), role, status,
		       failed_attempts, blocked_until, permanently_blocked, created_at, updated_at
		FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.Role, &u.Status,
		&u.FailedAttempts, &u.BlockedUntil, &u.PermanentlyBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user row
func (db *DB) CreateUser(user *models.User) error {
	return db.conn.QueryRow(`
		INSERT INTO users (username, password, email, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Password, user.Email, user.Role, user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// SaveUser persists lockout counters and other mutable user fields
func (db *DB) SaveUser(user *models.User) error {
	_, err := db.conn.Exec(`
		UPDATE users
		SET password = $1, email = $2, role = $3, status = $4,
		    failed_attempts = $5, blocked_until = $6, permanently_blocked = $7, updated_at = NOW()
		WHERE id = $8`,
		user.Password, user.Email, user.Role, user.Status,
		user.FailedAttempts, user.BlockedUntil, user.PermanentlyBlocked, user.ID)
	return err
}

// CountUsers returns the number of user rows
func (db *DB) CountUsers() (int64, error) {
	var count int64
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (db *DB) galleryFor(propertyID int64) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT file_name FROM property_images
		WHERE property_id = $1
		ORDER BY sort_order ASC, id ASC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gallery := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		gallery = append(gallery, name)
	}
	return gallery, rows.Err()
}

func insertGalleryRows(tx *sql.Tx, propertyID int64, gallery []string) error {
	for i, name := range gallery {
		if _, err := tx.Exec(`
			INSERT INTO property_images (property_id, file_name, sort_order)
			VALUES ($1, $2, $3)`, propertyID, name, i); err != nil {
			return err
		}
	}
	return nil
}
