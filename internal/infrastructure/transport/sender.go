// Package transport is the thin outbound wrapper around the chat API. The
// core emits ports.Reply values; this client turns them into sendMessage and
// sendDocument calls. The corpus carries no outbound HTTP client library, so
// net/http is used directly.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/eventreg/registration-system/internal/core/ports"
)

const requestTimeout = 10 * time.Second

// Client implements ports.Sender against a Telegram-style bot API.
type Client struct {
	apiBase string
	http    *http.Client
}

func NewClient(apiBase string) *Client {
	return &Client{
		apiBase: apiBase,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// --- Wire types (chat API reply markup) ---

type keyboardButton struct {
	Text           string `json:"text"`
	RequestContact bool   `json:"request_contact,omitempty"`
}

type replyKeyboardMarkup struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
}

type replyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

// Send delivers each reply in order; a document reply becomes a
// sendDocument multipart upload.
func (c *Client) Send(ctx context.Context, callerID int64, replies []ports.Reply) error {
	for _, r := range replies {
		var err error
		if r.Document != nil {
			err = c.sendDocument(ctx, callerID, r.Document)
		} else {
			err = c.sendMessage(ctx, callerID, r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendMessage(ctx context.Context, callerID int64, r ports.Reply) error {
	req := sendMessageRequest{ChatID: callerID, Text: r.Text}
	switch {
	case r.Keyboard != nil:
		req.ReplyMarkup = toMarkup(r.Keyboard)
	case r.RemoveKeyboard:
		req.ReplyMarkup = replyKeyboardRemove{RemoveKeyboard: true}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("send message marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, "sendMessage")
}

func (c *Client) sendDocument(ctx context.Context, callerID int64, doc *ports.File) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("chat_id", strconv.FormatInt(callerID, 10)); err != nil {
		return fmt.Errorf("send document form: %w", err)
	}
	if doc.Caption != "" {
		if err := mw.WriteField("caption", doc.Caption); err != nil {
			return fmt.Errorf("send document form: %w", err)
		}
	}
	part, err := mw.CreateFormFile("document", doc.Name)
	if err != nil {
		return fmt.Errorf("send document form: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return fmt.Errorf("send document form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("send document form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/sendDocument", &buf)
	if err != nil {
		return fmt.Errorf("send document request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(httpReq, "sendDocument")
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, payload)
	}
	return nil
}

func toMarkup(kb *ports.Keyboard) replyKeyboardMarkup {
	rows := make([][]keyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]keyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, keyboardButton{Text: b.Text, RequestContact: b.RequestContact})
		}
		rows = append(rows, buttons)
	}
	return replyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: kb.OneTime,
	}
}
