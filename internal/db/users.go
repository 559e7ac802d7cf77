package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/model"
)

// inserts new user into table, returns new user ID.
func (s *pgStore) CreateUser(email, hashedPassword string, name *string, roles []model.Role) (int, error) {
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}
	roleStrings := make(pq.StringArray, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, string(r))
	}
	query := `
	INSERT INTO users (email, hashed_password, name, roles, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	RETURNING id;
	`
	var newID int
	err := s.ext.QueryRowx(query, email, hashedPassword, name, roleStrings).Scan(&newID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return 0, err
	}
	return newID, nil
}

// fetches user by email. returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	query := `
	SELECT id, email, hashed_password, name, roles, created_at, updated_at
	FROM users
	WHERE email = $1;
	`
	if err := sqlx.Get(s.ext, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

// fetches a user by ID. Returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	query := `
	SELECT id, email, hashed_password, name, roles, created_at, updated_at
	FROM users
	WHERE id = $1;
	`
	if err := sqlx.Get(s.ext, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Int("user_id", id).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

// updates a user's email and name, and bumps updated_at.
// returns sql.ErrNoRows if no rows were affected (user ID doesn't exist).
func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	query := `
	UPDATE users
	SET email = $2,
	    name = $3,
	    updated_at = now()
	WHERE id = $1;
	`
	res, err := s.ext.Exec(query, id, email, name)
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - exec")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - rows affected")
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
