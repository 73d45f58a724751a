package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/realestate-site/internal/models"
)

// NewPostgresPool parses dsn, connects and pings.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PostgresStore owns the users and properties tables. Every write is a
// single auto-committed statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates both tables if they don't exist. Username and email are
// deliberately not unique.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id       BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			email    VARCHAR(100) NOT NULL,
			password VARCHAR(100) NOT NULL
		);
		CREATE TABLE IF NOT EXISTS properties (
			id            BIGSERIAL PRIMARY KEY,
			name          VARCHAR(100) NOT NULL,
			whatsapp      VARCHAR(20)  NOT NULL,
			email         VARCHAR(100) NOT NULL,
			property_type VARCHAR(50)  NOT NULL,
			bhk_type      VARCHAR(50)  NOT NULL,
			address       VARCHAR(255) NOT NULL,
			selected_city VARCHAR(100) NOT NULL,
			message       VARCHAR(500),
			image_url     VARCHAR(500),
			city          VARCHAR(100)
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	u := models.User{Username: username, Email: email, Password: hashedPassword}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		username, email, hashedPassword,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns the lowest-id user with that exact username,
// or (nil, nil) when there is none.
func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password FROM users
		 WHERE username = $1 ORDER BY id LIMIT 1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateProperty(ctx context.Context, p *models.Property) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO properties
		   (name, whatsapp, email, property_type, bhk_type, address, selected_city, message, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		p.Name, p.WhatsApp, p.Email, p.PropertyType, p.BHKType, p.Address, p.SelectedCity,
		p.Message, p.ImageURL,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

// ListProperties returns every property in insertion order.
func (s *PostgresStore) ListProperties(ctx context.Context) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, whatsapp, email, property_type, bhk_type, address, selected_city,
		        COALESCE(message, ''), COALESCE(image_url, ''), COALESCE(city, '')
		 FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.WhatsApp, &p.Email, &p.PropertyType, &p.BHKType,
			&p.Address, &p.SelectedCity, &p.Message, &p.ImageURL, &p.City); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}
