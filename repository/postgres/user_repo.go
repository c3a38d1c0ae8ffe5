package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	const query = `
		SELECT login, name, avatar_url, bio, latitude, longitude, created_at
		FROM users
		WHERE login = $1
	`
	record, err := scanRecord(r.pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.UserRecord, error) {
	const query = `
		SELECT login, name, avatar_url, bio, latitude, longitude, created_at
		FROM users
		ORDER BY created_at, login
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.UserRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (r *userRepository) Create(ctx context.Context, record *domain.UserRecord) error {
	if record == nil || record.Login == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO users (login, name, avatar_url, bio, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (login) DO NOTHING
		RETURNING created_at
	`

	var lat, lng *float64
	if record.Location != nil {
		lat = &record.Location.Latitude
		lng = &record.Location.Longitude
	}

	err := r.pool.QueryRow(ctx, query,
		record.Login,
		record.Name,
		record.AvatarURL,
		record.Bio,
		lat,
		lng,
	).Scan(&record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// ON CONFLICT DO NOTHING returns no row when the login is taken.
		return domain.ErrUserExists
	}
	return err
}

func scanRecord(row pgx.Row) (*domain.UserRecord, error) {
	var record domain.UserRecord
	var lat, lng *float64

	if err := row.Scan(
		&record.Login,
		&record.Name,
		&record.AvatarURL,
		&record.Bio,
		&lat,
		&lng,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		record.Location = &domain.Coordinate{Latitude: *lat, Longitude: *lng}
	}
	return &record, nil
}
