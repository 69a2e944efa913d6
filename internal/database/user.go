package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openddz/ddz-server/internal/auth"
	"github.com/openddz/ddz-server/internal/models"
)

// StartingGold is granted to every newly created account.
const StartingGold = 10000

// CreateUser hashes the password and inserts the account. Guests may have an
// empty password; they can only ever log in through the guest flow.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}
	if user.Gold == 0 {
		user.Gold = StartingGold
	}

	if user.Password != "" {
		hash, err := auth.HashPassword(user.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}

	q := `INSERT INTO users (id, account, password, nickname, avatar, gold, is_guest)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Account, user.Password, user.Nickname,
			user.Avatar, user.Gold, user.IsGuest,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func GetUserByAccount(ctx context.Context, account string) (*models.User, error) {
	var u models.User
	q := `
	SELECT id, account, password, nickname, avatar, gold, is_guest
	FROM users
	WHERE account=$1
	`
	err := DB.QueryRow(ctx, q, account).Scan(
		&u.ID, &u.Account, &u.Password, &u.Nickname,
		&u.Avatar, &u.Gold, &u.IsGuest,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `
	SELECT id, account, password, nickname, avatar, gold, is_guest
	FROM users
	WHERE id=$1
	`
	err := DB.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Account, &u.Password, &u.Nickname,
		&u.Avatar, &u.Gold, &u.IsGuest,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthenticateUser checks the account's password and returns a signed JWT.
func AuthenticateUser(ctx context.Context, account, password string) (string, error) {
	user, err := GetUserByAccount(ctx, account)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}
	if user.IsGuest {
		return "", fmt.Errorf("guest accounts cannot log in with a password")
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.Account)
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, nil
}

// UpdateUserProfile changes the mutable display fields of an account.
func UpdateUserProfile(ctx context.Context, u *models.User) error {
	q := `UPDATE users SET nickname=$1, avatar=$2 WHERE account=$3`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, u.Nickname, u.Avatar, u.Account)
		return err
	})
}
