package domain

// Step is the current position of a caller inside a multi-turn dialogue.
type Step string

const (
	StepNone Step = ""

	// Registration flow.
	StepAwaitingConsent   Step = "awaiting_consent"
	StepAwaitingPhone     Step = "awaiting_phone"
	StepAwaitingFirstName Step = "awaiting_first_name"
	StepAwaitingLastName  Step = "awaiting_last_name"

	// Admin list/export flows.
	StepAdminListFilter       Step = "admin_list_filter"
	StepAdminListRangeStart   Step = "admin_list_range_start"
	StepAdminListRangeEnd     Step = "admin_list_range_end"
	StepAdminExportFilter     Step = "admin_export_filter"
	StepAdminExportRangeStart Step = "admin_export_range_start"
	StepAdminExportRangeEnd   Step = "admin_export_range_end"

	// Admin reset flow.
	StepAdminResetPassword Step = "admin_reset_password"
	StepAdminResetConfirm  Step = "admin_reset_confirm"
)

// Session is the ephemeral per-caller dialogue context. It lives in the
// session store only; losing it forces the caller to restart the current
// dialogue but can never corrupt the participant store.
type Session struct {
	CallerID int64 `json:"caller_id"`
	Step     Step  `json:"step"`

	// Fields collected across registration turns.
	Consent   bool   `json:"consent,omitempty"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"first_name,omitempty"`

	// Provisional range boundary for the admin interactive range flows,
	// stored as YYYY-MM-DD.
	RangeStart string `json:"range_start,omitempty"`
}

// NewSession returns an idle session for the given caller.
func NewSession(callerID int64) Session {
	return Session{CallerID: callerID}
}
