package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/api/metrics"
	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// listPreviewLimit caps how many records a list reply renders inline.
const listPreviewLimit = 30

// Admin drives the privileged operator flows: roster listing, date-filtered
// export and the password-gated destructive reset. Every entry point checks
// the caller against the static operator allow-list.
type Admin struct {
	store         ports.ParticipantRepository
	sessions      ports.SessionStore
	exporter      ports.Exporter
	operators     map[int64]struct{}
	resetPassword string
	logger        zerolog.Logger
	now           func() time.Time
}

func NewAdmin(
	store ports.ParticipantRepository,
	sessions ports.SessionStore,
	exporter ports.Exporter,
	operatorIDs []int64,
	resetPassword string,
	logger zerolog.Logger,
) *Admin {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	return &Admin{
		store:         store,
		sessions:      sessions,
		exporter:      exporter,
		operators:     ops,
		resetPassword: resetPassword,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IsOperator reports whether the caller is on the operator allow-list.
func (a *Admin) IsOperator(callerID int64) bool {
	_, ok := a.operators[callerID]
	return ok
}

// Menu handles /admin.
func (a *Admin) Menu(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if !a.IsOperator(ev.CallerID) {
		return []ports.Reply{plainReply(msgAdminOnly)}, nil
	}
	if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgAdminMenu, adminKeyboard())}, nil
}

// CloseMenu handles the close-menu button.
func (a *Admin) CloseMenu(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	return []ports.Reply{removeKeyboardReply(msgAdminMenuClosed)}, nil
}

// ListCommand handles "/list [today|FROM TO]".
func (a *Admin) ListCommand(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if !a.IsOperator(ev.CallerID) {
		return []ports.Reply{plainReply(msgAdminOnly)}, nil
	}
	args := commandArgs(ev.Text, "/list")
	return a.renderList(ctx, args)
}

// ExportCommand handles "/export [today|FROM TO]".
func (a *Admin) ExportCommand(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if !a.IsOperator(ev.CallerID) {
		return []ports.Reply{plainReply(msgAdminOnly)}, nil
	}
	args := commandArgs(ev.Text, "/export")
	return a.renderExport(ctx, args)
}

// MenuList enters the list filter flow.
func (a *Admin) MenuList(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	return a.enterFilter(ctx, ev.CallerID, domain.StepAdminListFilter, msgListFilterPrompt)
}

// MenuExport enters the export filter flow.
func (a *Admin) MenuExport(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	return a.enterFilter(ctx, ev.CallerID, domain.StepAdminExportFilter, msgExportFilterPrompt)
}

// MenuExportToday is the one-tap export shortcut.
func (a *Admin) MenuExportToday(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	replies, err := a.renderExport(ctx, "today")
	if err != nil {
		return nil, err
	}
	return append(replies, textReply(msgAdminMenu, adminKeyboard())), nil
}

func (a *Admin) enterFilter(ctx context.Context, callerID int64, step domain.Step, prompt string) ([]ports.Reply, error) {
	sess := domain.NewSession(callerID)
	sess.Step = step
	if err := a.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(prompt, adminFilterKeyboard())}, nil
}

// ListFilterStep consumes the filter choice for the list flow.
func (a *Admin) ListFilterStep(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	return a.filterStep(ctx, ev, sess, domain.StepAdminListRangeStart, a.renderList)
}

// ExportFilterStep consumes the filter choice for the export flow.
func (a *Admin) ExportFilterStep(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	return a.filterStep(ctx, ev, sess, domain.StepAdminExportRangeStart, a.renderExport)
}

// filterStep handles one of: back, a one-tap filter, entry into the
// interactive range flow, or a free-form "FROM TO" range.
func (a *Admin) filterStep(
	ctx context.Context,
	ev ports.InboundEvent,
	sess domain.Session,
	rangeStartStep domain.Step,
	action func(context.Context, string) ([]ports.Reply, error),
) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)

	switch text {
	case btnBack:
		return a.backToMenu(ctx, ev.CallerID)
	case btnFilterAll:
		return a.runFilterAction(ctx, ev.CallerID, "", action)
	case btnFilterToday:
		return a.runFilterAction(ctx, ev.CallerID, "today", action)
	case btnFilterRange:
		sess.Step = rangeStartStep
		sess.RangeStart = ""
		if err := a.sessions.Put(ctx, sess); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(msgRangeFromPrompt, adminBackKeyboard())}, nil
	}

	// Free-form "YYYY-MM-DD YYYY-MM-DD" typed directly at the filter menu.
	if _, err := domain.ParseRangeArgs(text, a.now()); err != nil {
		return []ports.Reply{textReply(msgFilterNotUnderstood, adminFilterKeyboard())}, nil
	}
	return a.runFilterAction(ctx, ev.CallerID, text, action)
}

// RangeStartStep captures the inclusive start date of an interactive range.
func (a *Admin) RangeStartStep(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)
	if text == btnBack {
		return a.backToMenu(ctx, ev.CallerID)
	}

	from, err := domain.ParseDate(text)
	if err != nil {
		return []ports.Reply{plainReply(msgRangeFromBadDate)}, nil
	}

	sess.RangeStart = from.Format(domain.DateLayout)
	switch sess.Step {
	case domain.StepAdminListRangeStart:
		sess.Step = domain.StepAdminListRangeEnd
	case domain.StepAdminExportRangeStart:
		sess.Step = domain.StepAdminExportRangeEnd
	}
	if err := a.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{plainReply(msgRangeToPrompt)}, nil
}

// RangeEndStep captures the inclusive end date and runs the pending action.
func (a *Admin) RangeEndStep(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)
	if text == btnBack {
		return a.backToMenu(ctx, ev.CallerID)
	}

	to, err := domain.ParseDate(text)
	if err != nil {
		return []ports.Reply{plainReply(msgRangeToBadDate)}, nil
	}

	args := sess.RangeStart + " " + to.Format(domain.DateLayout)
	action := a.renderList
	if sess.Step == domain.StepAdminExportRangeEnd {
		action = a.renderExport
	}
	return a.runFilterAction(ctx, ev.CallerID, args, action)
}

// MenuReset enters the reset flow, refusing when no secret is configured.
func (a *Admin) MenuReset(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	if a.resetPassword == "" {
		if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(msgResetNoPassword, adminKeyboard())}, nil
	}

	sess := domain.NewSession(ev.CallerID)
	sess.Step = domain.StepAdminResetPassword
	if err := a.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgResetPasswordPrompt, adminBackKeyboard())}, nil
}

// ResetPasswordStep compares the input to the configured secret. Mismatches
// re-prompt without a transition; there is no attempt limit.
func (a *Admin) ResetPasswordStep(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)
	if text == btnBack {
		return a.backToMenu(ctx, ev.CallerID)
	}

	if subtle.ConstantTimeCompare([]byte(text), []byte(a.resetPassword)) != 1 {
		a.logger.Warn().Int64("caller_id", ev.CallerID).Msg("wrong reset password attempt")
		return []ports.Reply{plainReply(msgResetWrongPassword)}, nil
	}

	sess.Step = domain.StepAdminResetConfirm
	if err := a.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgResetConfirmPrompt, wipeConfirmKeyboard())}, nil
}

// ResetConfirmStep accepts only the explicit confirmation signals. A
// negative answer cancels without mutating the store.
func (a *Admin) ResetConfirmStep(ctx context.Context, ev ports.InboundEvent, _ domain.Session) ([]ports.Reply, error) {
	text := strings.TrimSpace(ev.Text)

	if text == btnWipeNo {
		if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
			return nil, err
		}
		return []ports.Reply{textReply(msgResetCancelled, adminKeyboard())}, nil
	}
	if text != btnWipeYes {
		return []ports.Reply{textReply(msgResetConfirmButtons, wipeConfirmKeyboard())}, nil
	}

	if err := a.store.WipeAll(ctx); err != nil {
		return nil, err
	}
	if err := a.sessions.Clear(ctx, ev.CallerID); err != nil {
		return nil, err
	}
	metrics.WipesTotal.Inc()
	a.logger.Warn().Int64("caller_id", ev.CallerID).Msg("participant store wiped")
	return []ports.Reply{textReply(msgResetDone, adminKeyboard())}, nil
}

// --- List / Export rendering ---

func (a *Admin) renderList(ctx context.Context, args string) ([]ports.Reply, error) {
	r, err := domain.ParseRangeArgs(args, a.now())
	if err != nil {
		return []ports.Reply{plainReply(rangeErrorMessage(err))}, nil
	}

	count, err := a.store.CountInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	rows, err := a.store.ListInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	preview := rows
	if len(preview) > listPreviewLimit {
		preview = preview[:listPreviewLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Фильтр: %s\nВсего участников: %d\nПервые записи:\n", r.Label, count)
	if len(preview) == 0 {
		b.WriteString(msgEmptyPreview)
	} else {
		lines := make([]string, 0, len(preview))
		for _, p := range preview {
			lines = append(lines, fmt.Sprintf("%d. %s — %s", p.Number, p.FullName(), p.Phone))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	if count > int64(len(preview)) {
		fmt.Fprintf(&b, "\n…и ещё %d", count-int64(len(preview)))
	}

	return []ports.Reply{plainReply(b.String())}, nil
}

func (a *Admin) renderExport(ctx context.Context, args string) ([]ports.Reply, error) {
	r, err := domain.ParseRangeArgs(args, a.now())
	if err != nil {
		return []ports.Reply{plainReply(rangeErrorMessage(err))}, nil
	}

	rows, err := a.store.ListInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []ports.Reply{plainReply(msgExportEmpty)}, nil
	}

	file, err := a.exporter.Render(rows, r)
	if err != nil {
		return nil, err
	}
	metrics.ExportsTotal.Inc()
	return []ports.Reply{{Document: &file}}, nil
}

// runFilterAction clears the session, runs the list/export action and
// returns the caller to the admin menu.
func (a *Admin) runFilterAction(
	ctx context.Context,
	callerID int64,
	args string,
	action func(context.Context, string) ([]ports.Reply, error),
) ([]ports.Reply, error) {
	if err := a.sessions.Clear(ctx, callerID); err != nil {
		return nil, err
	}
	replies, err := action(ctx, args)
	if err != nil {
		return nil, err
	}
	return append(replies, textReply(msgAdminMenu, adminKeyboard())), nil
}

func (a *Admin) backToMenu(ctx context.Context, callerID int64) ([]ports.Reply, error) {
	if err := a.sessions.Clear(ctx, callerID); err != nil {
		return nil, err
	}
	return []ports.Reply{textReply(msgAdminMenu, adminKeyboard())}, nil
}

func rangeErrorMessage(err error) string {
	if errors.Is(err, domain.ErrBadDate) {
		return msgBadRangeFormat
	}
	return msgBadRangeArgs
}

// commandArgs strips the command prefix from a message text, mirroring the
// transport convention "/cmd arg1 arg2".
func commandArgs(text, cmd string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), cmd))
}
