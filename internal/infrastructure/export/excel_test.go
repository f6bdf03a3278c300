package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eventreg/registration-system/internal/core/domain"
)

func TestRender(t *testing.T) {
	participants := []domain.Participant{
		{
			Number: 1, CallerID: 100, Phone: "+79991234567",
			FirstName: "Иван", LastName: "Петров", Consent: true,
			RegisteredAt: time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		},
		{
			Number: 2, CallerID: 101, Phone: "+79991234568",
			FirstName: "Анна", LastName: "Иванова", Consent: false,
			RegisteredAt: time.Date(2026, 2, 6, 13, 30, 0, 0, time.UTC),
		},
	}

	file, err := NewExcelExporter().Render(participants, domain.AllRange())
	require.NoError(t, err)
	require.Equal(t, "participants_all.xlsx", file.Name)
	require.Contains(t, file.Caption, "2 записей")

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, header, rows[0])
	require.Equal(t, []string{"1", "100", "+79991234567", "Иван", "Петров", "Да", "2026-02-06T12:00:00Z"}, rows[1])
	require.Equal(t, "Нет", rows[2][5])
}

func TestRender_FileNameCarriesFilter(t *testing.T) {
	from, err := domain.ParseDate("2026-02-01")
	require.NoError(t, err)
	to, err := domain.ParseDate("2026-02-06")
	require.NoError(t, err)

	file, err := NewExcelExporter().Render(nil, domain.DatesRange(from, to))
	require.NoError(t, err)
	require.Equal(t, "participants_2026-02-01_2026-02-06.xlsx", file.Name)

	file, err = NewExcelExporter().Render(nil, domain.TodayRange(time.Now()))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(file.Name, "_today_utc.xlsx"), file.Name)
}

func TestRender_NoParticipants(t *testing.T) {
	file, err := NewExcelExporter().Render(nil, domain.AllRange())
	require.NoError(t, err)
	require.Contains(t, file.Caption, "0 записей")

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
