// Package planner runs the mental reset form: draft edits, the activity
// cap, reset, and saving finished sessions for the signed-in user.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/mentalreset/internal/domain"
	"example.com/mentalreset/internal/drafts"
	"example.com/mentalreset/internal/notify"
	"example.com/mentalreset/internal/observability"
)

// Routes the client is sent to.
const (
	RouteSignIn = "/auth"
	RouteHome   = "/"
)

// ErrDraftOwnedByAnother is returned when a signed-in user addresses a
// draft started by a different user.
var ErrDraftOwnedByAnother = errors.New("draft belongs to another user")

// Result is the state handed back after every planner action.
type Result struct {
	DraftID    string
	Form       domain.Form
	Decision   domain.Decision
	Receipt    *domain.SaveReceipt
	RedirectTo string
}

// Planner coordinates drafts, the selection policy and the persistence gateway.
type Planner struct {
	drafts      drafts.Store
	policy      domain.SelectionPolicy
	gateway     *domain.Gateway
	signInRoute string
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures optional behaviour for the Planner.
type Option func(*Planner)

// WithSignInRoute overrides where unauthenticated users are redirected.
func WithSignInRoute(route string) Option {
	return func(p *Planner) {
		if route != "" {
			p.signInRoute = route
		}
	}
}

// WithLogger overrides the logger used to report failures.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithClock overrides the clock used when a stored date cannot be parsed.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithIDGenerator overrides draft id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Planner) {
		p.newID = fn
	}
}

// New constructs a Planner.
func New(store drafts.Store, policy domain.SelectionPolicy, gateway *domain.Gateway, opts ...Option) *Planner {
	p := &Planner{
		drafts:      store,
		policy:      policy,
		gateway:     gateway,
		signInRoute: RouteSignIn,
		logger:      zap.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy exposes the configured selection policy.
func (p *Planner) Policy() domain.SelectionPolicy {
	return p.policy
}

// CreateDraft starts an empty form.
func (p *Planner) CreateDraft(ctx context.Context, user *domain.User) (Result, error) {
	id := p.newID()
	d := drafts.Draft{}
	if user != nil {
		d.OwnerID = user.ID
	}
	if err := p.drafts.Put(ctx, id, d); err != nil {
		return Result{}, err
	}
	return Result{DraftID: id, Form: d.Form}, nil
}

// Draft returns the current form.
func (p *Planner) Draft(ctx context.Context, id string, user *domain.User) (Result, error) {
	d, err := p.load(ctx, id, user)
	if err != nil {
		return Result{}, err
	}
	return Result{DraftID: id, Form: d.Form}, nil
}

// SetMood makes mood the only chosen mood.
func (p *Planner) SetMood(ctx context.Context, id string, user *domain.User, mood domain.Mood) (Result, error) {
	return p.mutate(ctx, id, user, func(f *domain.Form) error {
		f.SetMood(mood)
		return nil
	})
}

// ToggleActivity flips key subject to the selection policy. A limit
// rejection is reported through n and Result.Decision; the form is unchanged
// and no error is returned.
func (p *Planner) ToggleActivity(ctx context.Context, id string, user *domain.User, key domain.ActivityKey, n notify.Notifier) (Result, error) {
	var decision domain.Decision
	res, err := p.mutate(ctx, id, user, func(f *domain.Form) error {
		var err error
		decision, err = f.ToggleActivity(p.policy, key)
		return err
	})
	if errors.Is(err, domain.ErrActivityLimitReached) {
		observability.RecordLimitRejection()
		n.Notify(notify.ActivityLimitReached(p.policy.Limit()))
		res.Decision = decision
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Decision = decision
	return res, nil
}

// SetReflection stores the answer for one zoom-out prompt.
func (p *Planner) SetReflection(ctx context.Context, id string, user *domain.User, field domain.ReflectionField, text string) (Result, error) {
	return p.mutate(ctx, id, user, func(f *domain.Form) error {
		return f.SetReflection(field, text)
	})
}

func (p *Planner) SetCustomActivity(ctx context.Context, id string, user *domain.User, text string) (Result, error) {
	return p.mutate(ctx, id, user, func(f *domain.Form) error {
		f.SetCustomActivity(text)
		return nil
	})
}

func (p *Planner) SetNextStep(ctx context.Context, id string, user *domain.User, text string) (Result, error) {
	return p.mutate(ctx, id, user, func(f *domain.Form) error {
		f.SetNextStep(text)
		return nil
	})
}

// Reset clears the form and confirms it through n.
func (p *Planner) Reset(ctx context.Context, id string, user *domain.User, n notify.Notifier) (Result, error) {
	res, err := p.mutate(ctx, id, user, func(f *domain.Form) error {
		f.Reset()
		return nil
	})
	if err != nil {
		return res, err
	}
	observability.RecordReset()
	n.Notify(notify.ResetComplete())
	return res, nil
}

// Save stores the draft for user. Without a user nothing is written and the
// result carries the sign-in redirect. On any failure the draft is left as
// it was so the same save can be retried.
func (p *Planner) Save(ctx context.Context, id string, user *domain.User, n notify.Notifier) (Result, error) {
	d, err := p.load(ctx, id, user)
	if errors.Is(err, domain.ErrUnauthenticated) {
		n.Notify(notify.SignInRequired())
		return Result{DraftID: id, RedirectTo: p.signInRoute}, err
	}
	if err != nil {
		return Result{}, err
	}
	res := Result{DraftID: id, Form: d.Form}

	receipt, err := p.gateway.Save(ctx, d.Form, user)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		observability.RecordSaveFailure(observability.ReasonUnauthenticated)
		n.Notify(notify.SignInRequired())
		res.RedirectTo = p.signInRoute
		return res, err
	case err != nil:
		observability.RecordSaveFailure(observability.ReasonStorage)
		p.logger.Error("save reset session failed", zap.String("draft_id", id), zap.String("user_id", user.ID), zap.Error(err))
		n.Notify(notify.SaveFailed())
		return res, err
	}

	if d.OwnerID == "" {
		d.OwnerID = user.ID
		if err := p.drafts.Put(ctx, id, d); err != nil {
			p.logger.Warn("claim draft after save failed", zap.String("draft_id", id), zap.Error(err))
		}
	}

	observability.RecordSessionSaved(receipt.Record.Mood)
	observability.RecordSessionPersisted(receipt.Record.CreatedAt)
	p.logger.Info("reset session saved",
		zap.String("session_id", receipt.Record.ID),
		zap.String("user_id", user.ID),
		zap.String("date", receipt.Date),
		zap.Int("activities", len(receipt.Record.Activities)),
	)
	n.Notify(notify.SaveSucceeded(p.savedDay(receipt.Date)))
	res.Receipt = receipt
	return res, nil
}

// ListSessions returns user's saved sessions, newest first. Without a user
// the sign-in route is returned alongside ErrUnauthenticated.
func (p *Planner) ListSessions(ctx context.Context, user *domain.User, n notify.Notifier) ([]domain.SessionRecord, string, error) {
	if user == nil {
		return nil, p.signInRoute, domain.ErrUnauthenticated
	}
	records, err := p.gateway.ListForUser(ctx, user.ID)
	if err != nil {
		observability.RecordFetchFailure()
		p.logger.Error("list reset sessions failed", zap.String("user_id", user.ID), zap.Error(err))
		n.Notify(notify.FetchFailed())
		return nil, "", err
	}
	return records, "", nil
}

// savedDay is the calendar day of a stored session, falling back to the
// planner clock when the backend returned an unexpected date format.
func (p *Planner) savedDay(date string) time.Time {
	if day, err := time.Parse(domain.DateLayout, date); err == nil {
		return day
	}
	return p.now()
}

func (p *Planner) load(ctx context.Context, id string, user *domain.User) (drafts.Draft, error) {
	d, err := p.drafts.Get(ctx, id)
	if err != nil {
		return drafts.Draft{}, err
	}
	if d.OwnerID == "" {
		return d, nil
	}
	if user == nil {
		return drafts.Draft{}, fmt.Errorf("%w: draft has an owner", domain.ErrUnauthenticated)
	}
	if d.OwnerID != user.ID {
		return drafts.Draft{}, ErrDraftOwnedByAnother
	}
	return d, nil
}

func (p *Planner) mutate(ctx context.Context, id string, user *domain.User, fn func(*domain.Form) error) (Result, error) {
	d, err := p.load(ctx, id, user)
	if err != nil {
		return Result{}, err
	}
	if err := fn(&d.Form); err != nil {
		return Result{DraftID: id, Form: d.Form}, err
	}
	if user != nil {
		d.OwnerID = user.ID
	}
	if err := p.drafts.Put(ctx, id, d); err != nil {
		return Result{}, err
	}
	return Result{DraftID: id, Form: d.Form}, nil
}
