package handler

import "github.com/eventreg/registration-system/internal/core/ports"

// --- Request types (chat transport update payload) ---

type updateRequest struct {
	UpdateID int64           `json:"update_id" validate:"required"`
	Message  *messageRequest `json:"message"`
}

type messageRequest struct {
	From    userRequest     `json:"from"`
	Text    string          `json:"text"`
	Contact *contactRequest `json:"contact"`
}

type userRequest struct {
	ID int64 `json:"id"`
}

type contactRequest struct {
	PhoneNumber string `json:"phone_number"`
	UserID      int64  `json:"user_id"`
}

// toInboundEvent maps a transport update onto the core event type. Returns
// false for update kinds the core does not consume (edits, channel posts).
func toInboundEvent(req updateRequest) (ports.InboundEvent, bool) {
	if req.Message == nil || req.Message.From.ID == 0 {
		return ports.InboundEvent{}, false
	}

	ev := ports.InboundEvent{
		UpdateID: req.UpdateID,
		CallerID: req.Message.From.ID,
		Text:     req.Message.Text,
	}
	if c := req.Message.Contact; c != nil {
		ev.Contact = &ports.ContactPayload{
			PhoneNumber: c.PhoneNumber,
			OwnerID:     c.UserID,
		}
	}
	return ev, true
}
