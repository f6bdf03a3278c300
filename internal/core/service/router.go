package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// HandlerFunc processes one inbound event against the caller's current
// session and returns the replies to emit.
type HandlerFunc func(ctx context.Context, ev ports.InboundEvent, sess domain.Session) ([]ports.Reply, error)

// route is one row of the dispatch table: the first route whose predicate
// matches wins.
type route struct {
	name   string
	match  func(ev ports.InboundEvent, sess domain.Session) bool
	handle HandlerFunc
}

// Router resolves an inbound event to a protocol handler based on the
// caller's current step and the message content. The table is explicit and
// ordered — commands and buttons first, then per-step handlers — so the full
// transition surface is auditable in one place.
type Router struct {
	sessions ports.SessionStore
	routes   []route
	logger   zerolog.Logger
}

func NewRouter(reg *Registration, adm *Admin, sessions ports.SessionStore, logger zerolog.Logger) *Router {
	isCommand := func(cmd string) func(ports.InboundEvent, domain.Session) bool {
		return func(ev ports.InboundEvent, _ domain.Session) bool {
			text := strings.TrimSpace(ev.Text)
			return text == cmd || strings.HasPrefix(text, cmd+" ")
		}
	}
	textIs := func(s string) func(ports.InboundEvent, domain.Session) bool {
		return func(ev ports.InboundEvent, _ domain.Session) bool {
			return strings.TrimSpace(ev.Text) == s
		}
	}
	operatorButton := func(s string) func(ports.InboundEvent, domain.Session) bool {
		return func(ev ports.InboundEvent, _ domain.Session) bool {
			return adm.IsOperator(ev.CallerID) && strings.TrimSpace(ev.Text) == s
		}
	}
	inStep := func(step domain.Step) func(ports.InboundEvent, domain.Session) bool {
		return func(_ ports.InboundEvent, sess domain.Session) bool {
			return sess.Step == step
		}
	}

	return &Router{
		sessions: sessions,
		logger:   logger,
		routes: []route{
			// Public commands and buttons.
			{"cmd_start", isCommand("/start"), reg.Start},
			{"btn_start", textIs(btnStart), reg.Begin},
			{"cmd_my", isCommand("/my"), reg.My},
			{"cmd_reset", isCommand("/reset"), reg.ResetStep},

			// Admin commands.
			{"cmd_admin", isCommand("/admin"), adm.Menu},
			{"cmd_list", isCommand("/list"), adm.ListCommand},
			{"cmd_export", isCommand("/export"), adm.ExportCommand},

			// Admin menu buttons (operators only; silently ignored for
			// everyone else by falling through to the step routes).
			{"btn_admin_close", operatorButton(btnAdminClose), adm.CloseMenu},
			{"btn_admin_list", operatorButton(btnAdminList), adm.MenuList},
			{"btn_admin_export", operatorButton(btnAdminExport), adm.MenuExport},
			{"btn_admin_export_today", operatorButton(btnAdminExportToday), adm.MenuExportToday},
			{"btn_admin_reset", operatorButton(btnAdminReset), adm.MenuReset},

			// Registration steps.
			{"reg_consent", inStep(domain.StepAwaitingConsent), reg.OnConsent},
			{"reg_phone", inStep(domain.StepAwaitingPhone), reg.OnPhone},
			{"reg_first_name", inStep(domain.StepAwaitingFirstName), reg.OnFirstName},
			{"reg_last_name", inStep(domain.StepAwaitingLastName), reg.OnLastName},

			// Admin steps.
			{"admin_list_filter", inStep(domain.StepAdminListFilter), adm.ListFilterStep},
			{"admin_list_range_start", inStep(domain.StepAdminListRangeStart), adm.RangeStartStep},
			{"admin_list_range_end", inStep(domain.StepAdminListRangeEnd), adm.RangeEndStep},
			{"admin_export_filter", inStep(domain.StepAdminExportFilter), adm.ExportFilterStep},
			{"admin_export_range_start", inStep(domain.StepAdminExportRangeStart), adm.RangeStartStep},
			{"admin_export_range_end", inStep(domain.StepAdminExportRangeEnd), adm.RangeEndStep},
			{"admin_reset_password", inStep(domain.StepAdminResetPassword), adm.ResetPasswordStep},
			{"admin_reset_confirm", inStep(domain.StepAdminResetConfirm), adm.ResetConfirmStep},
		},
	}
}

// Dispatch routes one inbound event to the first matching handler. Events
// that match nothing (free text outside any flow) are ignored.
func (rt *Router) Dispatch(ctx context.Context, ev ports.InboundEvent) ([]ports.Reply, error) {
	sess, err := rt.sessions.Get(ctx, ev.CallerID)
	if err != nil {
		return nil, err
	}

	for _, r := range rt.routes {
		if r.match(ev, sess) {
			rt.logger.Debug().
				Str("route", r.name).
				Int64("caller_id", ev.CallerID).
				Str("step", string(sess.Step)).
				Msg("dispatching event")
			return r.handle(ctx, ev, sess)
		}
	}
	return nil, nil
}
