package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/openddz/ddz-server/internal/game"
)

// RecordSettlement persists a finished deal and applies the gold deltas to
// every seated account in a single transaction. Seats that were already
// vacated (forfeits) keep their delta in the game row but get no gold update.
func RecordSettlement(ctx context.Context, st game.Settlement, accounts [3]string) error {
	insertGame := `
	INSERT INTO games (id, room_id, landlord_seat, winner, multiplier, rate)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	insertResult := `
	INSERT INTO game_results (game_id, seat, account, delta)
	VALUES ($1, $2, $3, $4)
	`
	updateGold := `UPDATE users SET gold = gold + $1 WHERE account = $2`

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertGame,
			st.GameID, st.RoomID, st.Landlord, st.Winner.String(), st.Multiplier, st.Rate,
		); err != nil {
			return err
		}
		for seat, account := range accounts {
			if _, err := tx.Exec(ctx, insertResult, st.GameID, seat, account, st.Deltas[seat]); err != nil {
				return err
			}
			if account == "" {
				continue
			}
			if _, err := tx.Exec(ctx, updateGold, st.Deltas[seat], account); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record settlement for game %s: %w", st.GameID, err)
	}
	return nil
}
