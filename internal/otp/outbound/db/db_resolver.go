package db

import (
	"context"
	"errors"

	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

// ResolveSignupIdentity reports, at request time, whether the email already
// maps to an account within the user class. Live and demo accounts live in
// separate tables and never shadow each other.
func (s *DB) ResolveSignupIdentity(ctx context.Context, email string, class entity.UserClass) (_ *entity.Resolution, err error) {
	ctx, span := s.startSpan(ctx, "ResolveSignupIdentity")
	defer func() { s.endSpan(span, err) }()

	table := "accounts"
	if class == entity.UserClassDemo {
		table = "demo_accounts"
	}

	var (
		id     int64
		status entity.AccountStatus
	)
	err = s.conn.QueryRow(ctx, `SELECT id, status FROM `+table+` WHERE lower(email) = $1`, email).
		Scan(&id, &status)
	if err != nil {
		if errors.Is(s.mapError(err), goerror.ErrNotFound) {
			return &entity.Resolution{State: entity.ResolutionNoAccount}, nil
		}
		return nil, s.mapError(err)
	}

	res := &entity.Resolution{State: entity.ResolutionInactiveAccount}
	if status == entity.AccountStatusActive {
		res.State = entity.ResolutionActiveAccount
	}

	if class == entity.UserClassDemo {
		res.Account.DemoAccountID = &id
	} else {
		res.Account.AccountID = &id
	}

	return res, nil
}
