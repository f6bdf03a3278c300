package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/api/metrics"
	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// Registration drives a caller from initial contact through consent, phone
// and name capture to a committed participant record.
//
// Uniqueness is checked at phone capture and re-checked at the final commit;
// the storage-level constraint remains the backstop for races that land
// between those two points.
type Registration struct {
	store    ports.ParticipantRepository
	sessions ports.SessionStore
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

func NewRegistration(store ports.ParticipantRepository, sessions ports.SessionStore, logger zerolog.Logger) *Registration {
	return &Registration{
		store:    store,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start handles /start: short-circuits already registered callers to their
// stored record, otherwise shows the start button.
func (r *Registration) Start(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	existing, err := r.store.FindByCallerID(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}
	if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	if existing != nil {
		return []ports.Reply{textReply(fmtAlreadyRegisteredFull(existing), startKeyboard())}, nil
	}
	return []ports.Reply{textReply(msgPressStart, startKeyboard())}, nil
}

// Begin handles the start button: enters the consent step unless the caller
// is already registered.
func (r *Registration) Begin(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	existing, err := r.store.FindByCallerID(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(fmtAlreadyRegisteredShort(existing.Number), startKeyboard())}, nil
	}

	sess = domain.NewSession(ev.CallerID)
	sess.Step = domain.StepAwaitingConsent
	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgConsentPrompt, consentKeyboard())}, nil
}

// My handles /my: shows the caller's own record.
func (r *Registration) My(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	existing, err := r.store.FindByCallerID(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return []ports.Reply{textReply(msgNotRegisteredYet, startKeyboard())}, nil
	}
	if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(fmtProfile(existing), startKeyboard())}, nil
}

// ResetStep handles /reset: abandons any in-progress dialogue without
// touching the participant store.
func (r *Registration) ResetStep(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgStepReset, startKeyboard())}, nil
}

// OnConsent accepts exactly the two consent signals; anything else
// re-prompts without a transition.
func (r *Registration) OnConsent(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)

	if text == btnConsentNo {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(msgConsentDeclined, startKeyboard())}, nil
	}
	if text != btnConsentYes {
		return []ports.Reply{textReply(msgConsentReprompt, consentKeyboard())}, nil
	}

	sess.Consent = true
	sess.Step = domain.StepAwaitingPhone
	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgPhonePrompt, contactKeyboard())}, nil
}

// OnPhone accepts only a contact payload owned by the caller. A phone that
// already belongs to a different caller ends the flow with a taken message.
func (r *Registration) OnPhone(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	if ev.Contact == nil || ev.Contact.PhoneNumber == "" {
		return []ports.Reply{textReply(msgPhoneViaButton, contactKeyboard())}, nil
	}
	if ev.Contact.OwnerID != 0 && ev.Contact.OwnerID != ev.CallerID {
		return []ports.Reply{textReply(msgPhoneMustBeOwn, contactKeyboard())}, nil
	}

	phone := domain.NormalizePhone(ev.Contact.PhoneNumber)

	// Idempotent re-entry guard: a record may have appeared since the flow
	// started.
	existing, err := r.store.FindByCallerID(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(fmtAlreadyRegisteredShort(existing.Number), startKeyboard())}, nil
	}

	holder, err := r.store.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.CallerID != ev.CallerID {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(fmtPhoneTaken(holder), startKeyboard())}, nil
	}

	sess.Phone = phone
	sess.Step = domain.StepAwaitingFirstName
	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{removeKeyboardReply(msgFirstNamePrompt)}, nil
}

// OnFirstName validates and stores the first name.
func (r *Registration) OnFirstName(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	name := strings.TrimSpace(ev.Text)
	if !r.validName(name) {
		return []ports.Reply{plainReply(msgFirstNameInvalid)}, nil
	}

	sess.FirstName = name
	sess.Step = domain.StepAwaitingLastName
	if err := r.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{plainReply(msgLastNamePrompt)}, nil
}

// OnLastName validates the last name, re-checks both uniqueness conditions
// once more (another registration may have completed since phone capture),
// then commits. A storage-level duplicate is resolved by re-querying and
// answering with whichever record now exists.
func (r *Registration) OnLastName(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	lastName := strings.TrimSpace(ev.Text)
	if !r.validName(lastName) {
		return []ports.Reply{plainReply(msgLastNameInvalid)}, nil
	}

	existing, err := r.store.FindByCallerID(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(fmtAlreadyRegisteredShort(existing.Number), startKeyboard())}, nil
	}

	holder, err := r.store.FindByPhone(ctx, sess.Phone)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.CallerID != ev.CallerID {
		if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(msgPhoneTakenShort, startKeyboard())}, nil
	}

	p := &domain.Participant{
		CallerID:     ev.CallerID,
		Phone:        sess.Phone,
		FirstName:    sess.FirstName,
		LastName:     lastName,
		Consent:      sess.Consent,
		RegisteredAt: r.now(),
	}

	number, err := r.store.Insert(ctx, p)
	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		metrics.RegistrationsDuplicateTotal.WithLabelValues(string(dup.Field)).Inc()
		return r.resolveDuplicate(ctx, ev.CallerID)
	}
	if err != nil {
		// Store unavailable: fail this turn, keep the session so the
		// caller can retry.
		return nil, err
	}

	if err := r.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	metrics.RegistrationsCompletedTotal.Inc()
	r.logger.Info().
		Int64("caller_id", ev.CallerID).
		Int64("number", number).
		Msg("participant registered")
	return []ports.Reply{textReply(fmtRegistered(number), startKeyboard())}, nil
}

// resolveDuplicate re-queries the store after a lost insert race and routes
// the caller to the message matching the now-current state.
func (r *Registration) resolveDuplicate(ctx context.Context, callerID int64) ([]ports.Reply, error) {
	if err := r.sessions.Clear(ctx, callerID); err != nil {
		return nil, err
	}
	existing, err := r.store.FindByCallerID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return []ports.Reply{textReply(fmtAlreadyRegisteredShort(existing.Number), startKeyboard())}, nil
	}
	return []ports.Reply{textReply(msgRegistrationFailed, startKeyboard())}, nil
}

func (r *Registration) validName(s string) bool {
	return r.validate.Var(s, "required,min=2,max=50") == nil
}
