package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tradepass/otpcore/internal/notifier/entity"
)

func (s *DB) CreateDeliveryLog(ctx context.Context, data entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO delivery_logs (id, email, user_class, subject, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.conn.Exec(ctx, query,
		data.ID,
		data.Email,
		data.UserClass,
		data.Subject,
		int16(data.Status),
		data.CreatedAt,
	)
	return s.mapError(err)
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	var deliveredAt pgtype.Timestamptz
	if u.DeliveredAt != nil {
		deliveredAt = pgtype.Timestamptz{Time: *u.DeliveredAt, Valid: true}
	}

	var lastError pgtype.Text
	if u.LastError != nil {
		lastError = pgtype.Text{String: *u.LastError, Valid: true}
	}

	query := `
		UPDATE delivery_logs
		SET status = $2, last_error = $3, delivered_at = $4
		WHERE id = $1`
	_, err = s.conn.Exec(ctx, query, u.ID, int16(u.Status), lastError, deliveredAt)
	return s.mapError(err)
}
