package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

const otpColumns = `id, kind, email, user_class, code_hash, account_id, demo_account_id, created_at, expires_at, verified, verified_at`

func scanOTP(row pgx.Row) (*entity.Record, error) {
	var (
		rec        entity.Record
		accountID  pgtype.Int8
		demoID     pgtype.Int8
		verifiedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&rec.ID,
		&rec.Kind,
		&rec.Email,
		&rec.UserClass,
		&rec.CodeHash,
		&accountID,
		&demoID,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.Verified,
		&verifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		rec.Account.AccountID = &accountID.Int64
	}
	if demoID.Valid {
		rec.Account.DemoAccountID = &demoID.Int64
	}
	if verifiedAt.Valid {
		rec.VerifiedAt = &verifiedAt.Time
	}

	return &rec, nil
}

// ReplaceOTP deletes any prior scope row and inserts the new record in one
// transaction, so only the newest code is ever live for a scope.
func (s *DB) ReplaceOTP(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceOTP")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM otp_codes WHERE kind = $1 AND email = $2 AND user_class = $3`,
		rec.Kind, rec.Email, rec.UserClass,
	); err != nil {
		return s.mapError(err)
	}

	accountID := pgtype.Int8{}
	if rec.Account.AccountID != nil {
		accountID = pgtype.Int8{Valid: true, Int64: *rec.Account.AccountID}
	}
	demoID := pgtype.Int8{}
	if rec.Account.DemoAccountID != nil {
		demoID = pgtype.Int8{Valid: true, Int64: *rec.Account.DemoAccountID}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO otp_codes (id, kind, email, user_class, code_hash, account_id, demo_account_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Kind, rec.Email, rec.UserClass, rec.CodeHash, accountID, demoID, rec.CreatedAt, rec.ExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) FindValidOTP(ctx context.Context, kind entity.Kind, email string, class entity.UserClass, codeHash string, now time.Time) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "FindValidOTP")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`SELECT `+otpColumns+` FROM otp_codes
		 WHERE kind = $1 AND email = $2 AND user_class = $3 AND code_hash = $4
		   AND verified = FALSE AND expires_at > $5`,
		kind, email, class, codeHash, now,
	)

	rec, err := scanOTP(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func (s *DB) FindLatestOTP(ctx context.Context, kind entity.Kind, email string, class entity.UserClass) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "FindLatestOTP")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`SELECT `+otpColumns+` FROM otp_codes
		 WHERE kind = $1 AND email = $2 AND user_class = $3
		 ORDER BY created_at DESC LIMIT 1`,
		kind, email, class,
	)

	rec, err := scanOTP(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

// MarkOTPVerified is the single-use gate: the conditional update affects zero
// rows when a concurrent verifier already won, surfaced as ErrConflict.
func (s *DB) MarkOTPVerified(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE otp_codes SET verified = TRUE, verified_at = $2 WHERE id = $1 AND verified = FALSE`,
		id, at,
	)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}

func (s *DB) DeleteExpiredOTP(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredOTP")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
