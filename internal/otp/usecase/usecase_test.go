package usecase

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
	"github.com/tradepass/otpcore/internal/pkg/hash"
	"github.com/tradepass/otpcore/internal/pkg/idempotency"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/validator"
)

func scopeKey(kind entity.Kind, email string, class entity.UserClass) string {
	return kind.String() + "|" + email + "|" + class.String()
}

// fakeDB keeps one record per scope behind a mutex, mirroring the
// replace-on-issue and conditional-update semantics of the real store.
type fakeDB struct {
	mu          sync.Mutex
	records     map[string]entity.Record
	resolutions map[string]entity.Resolution
	failWith    error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		records:     make(map[string]entity.Record),
		resolutions: make(map[string]entity.Resolution),
	}
}

func (f *fakeDB) ReplaceOTP(_ context.Context, rec entity.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.records[scopeKey(rec.Kind, rec.Email, rec.UserClass)] = rec
	return nil
}

func (f *fakeDB) FindValidOTP(_ context.Context, kind entity.Kind, email string, class entity.UserClass, codeHash string, now time.Time) (*entity.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	rec, ok := f.records[scopeKey(kind, email, class)]
	if !ok || rec.CodeHash != codeHash || rec.Verified || !now.Before(rec.ExpiresAt) {
		return nil, goerror.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (f *fakeDB) FindLatestOTP(_ context.Context, kind entity.Kind, email string, class entity.UserClass) (*entity.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[scopeKey(kind, email, class)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (f *fakeDB) MarkOTPVerified(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, rec := range f.records {
		if rec.ID != id {
			continue
		}
		if rec.Verified {
			return goerror.ErrConflict
		}
		rec.Verified = true
		rec.VerifiedAt = &at
		f.records[key] = rec
		return nil
	}
	return goerror.ErrNotFound
}

func (f *fakeDB) DeleteExpiredOTP(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for key, rec := range f.records {
		if !rec.ExpiresAt.After(before) {
			delete(f.records, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeDB) ResolveSignupIdentity(_ context.Context, email string, class entity.UserClass) (*entity.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.resolutions[email+"|"+class.String()]; ok {
		out := res
		return &out, nil
	}
	return &entity.Resolution{State: entity.ResolutionNoAccount}, nil
}

func (f *fakeDB) setResolution(email string, class entity.UserClass, res entity.Resolution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolutions[email+"|"+class.String()] = res
}

// fakeMessaging records every published event.
type fakeMessaging struct {
	mu         sync.Mutex
	issued     []OTPIssuedEvent
	verified   []OTPVerifiedEvent
	failed     []OTPVerifyFailedEvent
	deliveries []CodeDeliveryEvent
	failWith   error
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishOTPVerified(_ context.Context, msg OTPVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.verified = append(f.verified, msg)
	return nil
}

func (f *fakeMessaging) PublishOTPVerifyFailed(_ context.Context, msg OTPVerifyFailedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.failed = append(f.failed, msg)
	return nil
}

func (f *fakeMessaging) PublishCodeDelivery(_ context.Context, msg CodeDeliveryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.deliveries = append(f.deliveries, msg)
	return nil
}

func (f *fakeMessaging) failureReasons() []entity.FailureReason {
	f.mu.Lock()
	defer f.mu.Unlock()
	reasons := make([]entity.FailureReason, 0, len(f.failed))
	for _, ev := range f.failed {
		reasons = append(reasons, ev.Reason)
	}
	return reasons
}

// fakeIdempotency replicates the redis state tracker in memory.
type fakeIdempotency struct {
	mu     sync.Mutex
	states map[string]idempotency.State
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{states: make(map[string]idempotency.State)}
}

func (f *fakeIdempotency) Acquire(_ context.Context, key string, _ time.Duration) (idempotency.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[key]; ok {
		return state, nil
	}
	f.states[key] = idempotency.StateInProgress
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[key] = idempotency.StateCompleted
	return nil
}

func (f *fakeIdempotency) MarkFailed(_ context.Context, key string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[key] = idempotency.StateFailed
	return nil
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	state, err := f.Acquire(ctx, key, 0)
	if err != nil {
		return err
	}
	switch state {
	case idempotency.StateInProgress:
		return idempotency.ErrAlreadyInProgress
	case idempotency.StateCompleted:
		return idempotency.ErrAlreadyCompleted
	case idempotency.StateFailed:
		return idempotency.ErrAlreadyFailed
	}
	if err := fn(ctx); err != nil {
		_ = f.MarkFailed(ctx, key, 0)
		return err
	}
	return f.MarkCompleted(ctx, key, 0)
}

// fixedClock returns a settable instant.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// seqCodegen hands out a scripted sequence of codes.
type seqCodegen struct {
	mu    sync.Mutex
	codes []string
	idx   int
}

func (g *seqCodegen) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.codes) {
		return g.codes[len(g.codes)-1], nil
	}
	code := g.codes[g.idx]
	g.idx++
	return code, nil
}

type counterUID struct {
	last atomic.Int64
}

func (u *counterUID) Generate() int64 {
	return u.last.Add(1)
}

// fakeConfig is a map-backed config for tests.
type fakeConfig struct {
	strings map[string]string
	bools   map[string]bool
	ints    map[string]int
	arrays  map[string][]string
}

var _ io.Closer = (*fakeConfig)(nil)

func (c *fakeConfig) Close() error                   { return nil }
func (c *fakeConfig) GetSecond(string) time.Duration { return 0 }
func (c *fakeConfig) GetInt(key string) int          { return c.ints[key] }
func (c *fakeConfig) GetInt32(key string) int32      { return int32(c.ints[key]) }
func (c *fakeConfig) GetUint16(key string) uint16    { return uint16(c.ints[key]) }
func (c *fakeConfig) GetFloat64(string) float64      { return 0 }
func (c *fakeConfig) GetBool(key string) bool        { return c.bools[key] }
func (c *fakeConfig) GetString(key string) string    { return c.strings[key] }
func (c *fakeConfig) GetArray(key string) []string   { return c.arrays[key] }

type fixture struct {
	uc    *Usecase
	db    *fakeDB
	mq    *fakeMessaging
	clock *fixedClock
	cfg   *fakeConfig
	gen   *seqCodegen
	idemp *fakeIdempotency
	hmac  hash.Hash
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()

	if len(codes) == 0 {
		codes = []string{"123456"}
	}

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	db := newFakeDB()
	mq := &fakeMessaging{}
	clk := &fixedClock{now: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)}
	cfg := &fakeConfig{
		strings: map[string]string{},
		bools:   map[string]bool{},
		ints:    map[string]int{},
		arrays:  map[string][]string{},
	}
	gen := &seqCodegen{codes: codes}
	idemp := newFakeIdempotency()
	hmac := hash.NewHMACSHA256("test-secret")

	uc := New(Dependency{
		RepoDB:        db,
		RepoMessaging: mq,
		Idempotency:   idemp,
		Validator:     v,
		Config:        cfg,
		HMAC:          hmac,
		CodeGenerator: gen,
		UID:           &counterUID{},
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
	})

	return &fixture{uc: uc, db: db, mq: mq, clock: clk, cfg: cfg, gen: gen, idemp: idemp, hmac: hmac}
}

func requireInvalidCode(t *testing.T, err error) {
	t.Helper()

	require.Error(t, err)
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, "Invalid or expired code", gerr.Msg())
	require.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}
