package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepass/otpcore/internal/notifier/entity"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/mail"
	"github.com/tradepass/otpcore/internal/pkg/validator"
)

type fakeDB struct {
	mu      sync.Mutex
	creates []entity.CreateDeliveryLog
	updates []entity.UpdateDeliveryLog
}

func (f *fakeDB) CreateDeliveryLog(_ context.Context, data entity.CreateDeliveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, data)
	return nil
}

func (f *fakeDB) UpdateDeliveryLogStatus(_ context.Context, u entity.UpdateDeliveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return nil
}

type fakeMail struct {
	mu       sync.Mutex
	sent     []mail.Message
	failures int
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type counterUID struct{ last int64 }

func (u *counterUID) Generate() int64 {
	u.last++
	return u.last
}

type fakeConfig struct {
	strings map[string]string
	arrays  map[string][]string
}

func (c *fakeConfig) Close() error                   { return nil }
func (c *fakeConfig) GetSecond(string) time.Duration { return 0 }
func (c *fakeConfig) GetInt(string) int              { return 0 }
func (c *fakeConfig) GetInt32(string) int32          { return 0 }
func (c *fakeConfig) GetUint16(string) uint16        { return 0 }
func (c *fakeConfig) GetFloat64(string) float64      { return 0 }
func (c *fakeConfig) GetBool(string) bool            { return false }
func (c *fakeConfig) GetString(key string) string    { return c.strings[key] }
func (c *fakeConfig) GetArray(key string) []string   { return c.arrays[key] }

func newTestUsecase(t *testing.T, db *fakeDB, mailer *fakeMail) (*Usecase, *fixedClock) {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := &fixedClock{now: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	cfg := &fakeConfig{
		strings: map[string]string{
			"modules.notifier.subject":       "Your one-time passcode",
			"modules.notifier.support_email": "support@example.com",
			"modules.notifier.company_name":  "Example Inc",
		},
		arrays: map[string][]string{},
	}

	uc := NewNotifier(Dependency{
		RepoDB:     db,
		RepoMail:   mailer,
		Config:     cfg,
		UID:        &counterUID{},
		Clock:      clk,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})
	return uc, clk
}

func TestConsumeCodeDelivery_Sent(t *testing.T) {
	db := &fakeDB{}
	mailer := &fakeMail{}
	uc, clk := newTestUsecase(t, db, mailer)

	err := uc.ConsumeCodeDelivery(context.Background(), ConsumeCodeDeliveryInput{
		Email:     "alice@example.com",
		UserClass: "live",
		Code:      "123456",
		ExpiresAt: clk.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	require.Len(t, db.creates, 1)
	require.Equal(t, entity.DeliveryStatusQueued, db.creates[0].Status)
	require.Equal(t, "alice@example.com", db.creates[0].Email)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, []string{"alice@example.com"}, mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].HTMLBody, "123456")
	require.Contains(t, mailer.sent[0].HTMLBody, "5 minutes")

	require.Len(t, db.updates, 1)
	require.Equal(t, entity.DeliveryStatusSent, db.updates[0].Status)
	require.NotNil(t, db.updates[0].DeliveredAt)
}

func TestConsumeCodeDelivery_RetriesThenSends(t *testing.T) {
	db := &fakeDB{}
	mailer := &fakeMail{failures: 1}
	uc, clk := newTestUsecase(t, db, mailer)

	err := uc.ConsumeCodeDelivery(context.Background(), ConsumeCodeDeliveryInput{
		Email:     "bob@example.com",
		UserClass: "demo",
		Code:      "654321",
		ExpiresAt: clk.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	require.Len(t, db.updates, 1)
	require.Equal(t, entity.DeliveryStatusSent, db.updates[0].Status)
}

func TestConsumeCodeDelivery_Failed(t *testing.T) {
	db := &fakeDB{}
	mailer := &fakeMail{failures: 10}
	uc, clk := newTestUsecase(t, db, mailer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.ConsumeCodeDelivery(ctx, ConsumeCodeDeliveryInput{
		Email:     "carol@example.com",
		UserClass: "live",
		Code:      "111111",
		ExpiresAt: clk.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	require.Empty(t, mailer.sent)
	require.Len(t, db.updates, 1)
	require.Equal(t, entity.DeliveryStatusFailed, db.updates[0].Status)
	require.NotNil(t, db.updates[0].LastError)
}

func TestConsumeCodeDelivery_InvalidPayloadSwallowed(t *testing.T) {
	db := &fakeDB{}
	mailer := &fakeMail{}
	uc, _ := newTestUsecase(t, db, mailer)

	err := uc.ConsumeCodeDelivery(context.Background(), ConsumeCodeDeliveryInput{
		Email:     "not-an-email",
		UserClass: "live",
		Code:      "123456",
		ExpiresAt: 1,
	})
	require.NoError(t, err)
	require.Empty(t, db.creates)
	require.Empty(t, mailer.sent)
}
