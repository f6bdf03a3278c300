package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub exporter
// ---------------------------------------------------------------------------

type stubExporter struct {
	calls     int
	lastRange domain.Range
	lastRows  int
}

func (e *stubExporter) Render(participants []domain.Participant, r domain.Range) (ports.File, error) {
	e.calls++
	e.lastRange = r
	e.lastRows = len(participants)
	return ports.File{
		Name:    "participants_" + r.Suffix + ".xlsx",
		Caption: fmt.Sprintf("Выгрузка участников: %d записей", len(participants)),
		Content: []byte("xlsx"),
	}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const operatorID int64 = 500

func newTestAdmin(store *stubStore, sessions *stubSessions, exporter *stubExporter, resetPassword string) *Admin {
	a := NewAdmin(store, sessions, exporter, []int64{operatorID}, resetPassword, zerolog.Nop())
	a.now = func() time.Time { return testTime }
	return a
}

func seedMany(store *stubStore, n int, at time.Time) {
	for i := 1; i <= n; i++ {
		store.seed(domain.Participant{
			Number:       int64(i),
			CallerID:     int64(1000 + i),
			Phone:        fmt.Sprintf("+7900%07d", i),
			FirstName:    "Имя",
			LastName:     fmt.Sprintf("Фамилия%d", i),
			Consent:      true,
			RegisteredAt: at,
		})
	}
}

// ---------------------------------------------------------------------------
// Menu and access
// ---------------------------------------------------------------------------

func TestMenu_NonOperator(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.Menu(context.Background(), event(10, "/admin"), domain.NewSession(10)))
	if reply.Text != msgAdminOnly {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
}

func TestMenu_Operator(t *testing.T) {
	sessions := newStubSessions()
	sessions.byCaller[operatorID] = domain.Session{CallerID: operatorID, Step: domain.StepAdminListFilter}
	adm := newTestAdmin(newStubStore(), sessions, &stubExporter{}, "pw")

	reply := singleReply(t)(adm.Menu(context.Background(), event(operatorID, "/admin"), domain.NewSession(operatorID)))
	if reply.Text != msgAdminMenu {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if reply.Keyboard == nil || len(reply.Keyboard.Rows) != 4 {
		t.Fatalf("expected admin keyboard, got %+v", reply.Keyboard)
	}
	if sessions.step(operatorID) != domain.StepNone {
		t.Fatalf("expected stale session cleared")
	}
}

func TestCloseMenu(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.CloseMenu(context.Background(), event(operatorID, btnAdminClose), domain.NewSession(operatorID)))
	if reply.Text != msgAdminMenuClosed || !reply.RemoveKeyboard {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestListCommand_Empty(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListCommand(context.Background(), event(operatorID, "/list"), domain.NewSession(operatorID)))
	if !strings.Contains(reply.Text, "Всего участников: 0") {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, msgEmptyPreview) {
		t.Fatalf("expected empty preview marker, got %q", reply.Text)
	}
}

func TestListCommand_PreviewCapped(t *testing.T) {
	store := newStubStore()
	seedMany(store, 35, testTime)
	adm := newTestAdmin(store, newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListCommand(context.Background(), event(operatorID, "/list"), domain.NewSession(operatorID)))
	if !strings.Contains(reply.Text, "Всего участников: 35") {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "…и ещё 5") {
		t.Fatalf("expected overflow marker, got %q", reply.Text)
	}
	if strings.Contains(reply.Text, "Фамилия31") {
		t.Fatalf("row beyond the preview cap leaked into output")
	}
	if !strings.Contains(reply.Text, "30. Имя Фамилия30") {
		t.Fatalf("expected row 30 in preview, got %q", reply.Text)
	}
}

func TestListCommand_TodayFilter(t *testing.T) {
	store := newStubStore()
	store.seed(domain.Participant{
		Number: 1, CallerID: 1001, Phone: "+79000000001",
		FirstName: "Имя", LastName: "Сегодня", RegisteredAt: testTime,
	})
	store.seed(domain.Participant{
		Number: 2, CallerID: 1002, Phone: "+79000000002",
		FirstName: "Имя", LastName: "Вчера", RegisteredAt: testTime.AddDate(0, 0, -1),
	})
	adm := newTestAdmin(store, newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListCommand(context.Background(), event(operatorID, "/list today"), domain.NewSession(operatorID)))
	if !strings.Contains(reply.Text, "Фильтр: сегодня (UTC)") {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Всего участников: 1") {
		t.Fatalf("expected yesterday's record filtered out, got %q", reply.Text)
	}
	if strings.Contains(reply.Text, "Вчера") {
		t.Fatalf("yesterday's record leaked into output")
	}
}

func TestListCommand_BadArgs(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListCommand(context.Background(), event(operatorID, "/list 2026-02-01"), domain.NewSession(operatorID)))
	if reply.Text != msgBadRangeArgs {
		t.Fatalf("unexpected text: %q", reply.Text)
	}

	reply = singleReply(t)(adm.ListCommand(context.Background(), event(operatorID, "/list 2026-02-01 junk"), domain.NewSession(operatorID)))
	if reply.Text != msgBadRangeFormat {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
}

func TestListCommand_NonOperator(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListCommand(context.Background(), event(10, "/list"), domain.NewSession(10)))
	if reply.Text != msgAdminOnly {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func TestExportCommand_Empty(t *testing.T) {
	exporter := &stubExporter{}
	adm := newTestAdmin(newStubStore(), newStubSessions(), exporter, "pw")

	reply := singleReply(t)(adm.ExportCommand(context.Background(), event(operatorID, "/export"), domain.NewSession(operatorID)))
	if reply.Text != msgExportEmpty {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if exporter.calls != 0 {
		t.Fatalf("exporter must not run for an empty result")
	}
}

func TestExportCommand_RendersDocument(t *testing.T) {
	store := newStubStore()
	seedMany(store, 3, testTime)
	exporter := &stubExporter{}
	adm := newTestAdmin(store, newStubSessions(), exporter, "pw")

	reply := singleReply(t)(adm.ExportCommand(context.Background(), event(operatorID, "/export"), domain.NewSession(operatorID)))
	if reply.Document == nil {
		t.Fatalf("expected a document reply, got %+v", reply)
	}
	if reply.Document.Name != "participants_all.xlsx" {
		t.Fatalf("unexpected file name: %q", reply.Document.Name)
	}
	if exporter.lastRows != 3 {
		t.Fatalf("expected 3 rows handed to exporter, got %d", exporter.lastRows)
	}
}

func TestMenuExportToday(t *testing.T) {
	store := newStubStore()
	seedMany(store, 2, testTime)
	exporter := &stubExporter{}
	adm := newTestAdmin(store, newStubSessions(), exporter, "pw")

	replies, err := adm.MenuExportToday(context.Background(), event(operatorID, btnAdminExportToday), domain.NewSession(operatorID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected document plus menu, got %d replies", len(replies))
	}
	if replies[0].Document == nil || replies[0].Document.Name != "participants_today_utc.xlsx" {
		t.Fatalf("unexpected first reply: %+v", replies[0])
	}
	if replies[1].Text != msgAdminMenu {
		t.Fatalf("expected return to menu, got %q", replies[1].Text)
	}
}

// ---------------------------------------------------------------------------
// Filter flow
// ---------------------------------------------------------------------------

func TestFilterStep_Back(t *testing.T) {
	sessions := newStubSessions()
	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminListFilter}
	sessions.byCaller[operatorID] = sess
	adm := newTestAdmin(newStubStore(), sessions, &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListFilterStep(context.Background(), event(operatorID, btnBack), sess))
	if reply.Text != msgAdminMenu {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if sessions.step(operatorID) != domain.StepNone {
		t.Fatalf("expected session cleared")
	}
}

func TestFilterStep_FreeFormRange(t *testing.T) {
	store := newStubStore()
	seedMany(store, 1, testTime)
	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminListFilter}
	adm := newTestAdmin(store, newStubSessions(), &stubExporter{}, "pw")

	replies, err := adm.ListFilterStep(context.Background(), event(operatorID, "2026-02-01 2026-02-06"), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected list plus menu, got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "диапазон: 2026-02-01 2026-02-06 (UTC)") {
		t.Fatalf("unexpected list text: %q", replies[0].Text)
	}
}

func TestFilterStep_NotUnderstood(t *testing.T) {
	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminListFilter}
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ListFilterStep(context.Background(), event(operatorID, "что-то"), sess))
	if reply.Text != msgFilterNotUnderstood {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
}

func TestFilterStep_EntersRangeFlow(t *testing.T) {
	sessions := newStubSessions()
	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminExportFilter}
	adm := newTestAdmin(newStubStore(), sessions, &stubExporter{}, "pw")

	reply := singleReply(t)(adm.ExportFilterStep(context.Background(), event(operatorID, btnFilterRange), sess))
	if reply.Text != msgRangeFromPrompt {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if sessions.step(operatorID) != domain.StepAdminExportRangeStart {
		t.Fatalf("unexpected step: %q", sessions.step(operatorID))
	}
}

func TestRangeSteps_ListFlow(t *testing.T) {
	store := newStubStore()
	seedMany(store, 1, testTime)
	sessions := newStubSessions()
	adm := newTestAdmin(store, sessions, &stubExporter{}, "pw")

	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminListRangeStart}
	reply := singleReply(t)(adm.RangeStartStep(context.Background(), event(operatorID, "2026-02-01"), sess))
	if reply.Text != msgRangeToPrompt {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	stored := sessions.byCaller[operatorID]
	if stored.Step != domain.StepAdminListRangeEnd || stored.RangeStart != "2026-02-01" {
		t.Fatalf("unexpected session: %+v", stored)
	}

	replies, err := adm.RangeEndStep(context.Background(), event(operatorID, "2026-02-06"), stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(replies[0].Text, "Всего участников: 1") {
		t.Fatalf("unexpected list text: %q", replies[0].Text)
	}
	if sessions.step(operatorID) != domain.StepNone {
		t.Fatalf("expected session cleared")
	}
}

func TestRangeStartStep_BadDateReprompts(t *testing.T) {
	sessions := newStubSessions()
	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminListRangeStart}
	sessions.byCaller[operatorID] = sess
	adm := newTestAdmin(newStubStore(), sessions, &stubExporter{}, "pw")

	reply := singleReply(t)(adm.RangeStartStep(context.Background(), event(operatorID, "01.02.2026"), sess))
	if reply.Text != msgRangeFromBadDate {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if sessions.step(operatorID) != domain.StepAdminListRangeStart {
		t.Fatalf("expected step unchanged")
	}
}

// ---------------------------------------------------------------------------
// Reset flow
// ---------------------------------------------------------------------------

func TestMenuReset_NoPasswordConfigured(t *testing.T) {
	adm := newTestAdmin(newStubStore(), newStubSessions(), &stubExporter{}, "")

	reply := singleReply(t)(adm.MenuReset(context.Background(), event(operatorID, btnAdminReset), domain.NewSession(operatorID)))
	if reply.Text != msgResetNoPassword {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
}

func TestResetFlow(t *testing.T) {
	store := newStubStore()
	seedMany(store, 2, testTime)
	sessions := newStubSessions()
	adm := newTestAdmin(store, sessions, &stubExporter{}, "s3cret")
	ctx := context.Background()

	reply := singleReply(t)(adm.MenuReset(ctx, event(operatorID, btnAdminReset), domain.NewSession(operatorID)))
	if reply.Text != msgResetPasswordPrompt {
		t.Fatalf("unexpected text: %q", reply.Text)
	}

	sess := sessions.byCaller[operatorID]
	reply = singleReply(t)(adm.ResetPasswordStep(ctx, event(operatorID, "wrong"), sess))
	if reply.Text != msgResetWrongPassword {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if store.wipes != 0 {
		t.Fatalf("store wiped without the password")
	}

	reply = singleReply(t)(adm.ResetPasswordStep(ctx, event(operatorID, " s3cret "), sess))
	if reply.Text != msgResetConfirmPrompt {
		t.Fatalf("unexpected text: %q", reply.Text)
	}

	sess = sessions.byCaller[operatorID]
	reply = singleReply(t)(adm.ResetConfirmStep(ctx, event(operatorID, "может быть"), sess))
	if reply.Text != msgResetConfirmButtons {
		t.Fatalf("unexpected text: %q", reply.Text)
	}

	reply = singleReply(t)(adm.ResetConfirmStep(ctx, event(operatorID, btnWipeYes), sess))
	if reply.Text != msgResetDone {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if store.wipes != 1 {
		t.Fatalf("expected exactly one wipe, got %d", store.wipes)
	}
	if len(store.byCaller) != 0 || store.nextNumber != 1 {
		t.Fatalf("store not reset: %d records, next number %d", len(store.byCaller), store.nextNumber)
	}
}

func TestResetConfirmStep_Cancel(t *testing.T) {
	store := newStubStore()
	seedMany(store, 1, testTime)
	adm := newTestAdmin(store, newStubSessions(), &stubExporter{}, "s3cret")

	sess := domain.Session{CallerID: operatorID, Step: domain.StepAdminResetConfirm}
	reply := singleReply(t)(adm.ResetConfirmStep(context.Background(), event(operatorID, btnWipeNo), sess))
	if reply.Text != msgResetCancelled {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if store.wipes != 0 || len(store.byCaller) != 1 {
		t.Fatalf("cancel must not touch the store")
	}
}
