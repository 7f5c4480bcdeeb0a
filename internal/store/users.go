package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	CareerField  string    `json:"careerField"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) CreateUser(name, email, passwordHash string) (int64, error) {
	res, err := s.writeDB.Exec(`
		INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)
	`, name, strings.ToLower(strings.TrimSpace(email)), passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UserByEmail(email string) (*User, error) {
	return s.scanUser(s.readDB.QueryRow(`
		SELECT id, name, email, password_hash, city, state, country, career_field, created_at
		FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) UserByID(id int64) (*User, error) {
	return s.scanUser(s.readDB.QueryRow(`
		SELECT id, name, email, password_hash, city, state, country, career_field, created_at
		FROM users WHERE id = ?
	`, id))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.City, &u.State, &u.Country, &u.CareerField, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// UpdateProfile replaces the personalization fields of a user.
func (s *Store) UpdateProfile(id int64, city, state, country, careerField string) error {
	res, err := s.writeDB.Exec(`
		UPDATE users SET city = ?, state = ?, country = ?, career_field = ?
		WHERE id = ?
	`, city, state, country, careerField, id)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
