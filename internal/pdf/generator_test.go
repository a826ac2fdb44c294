package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

func TestGenerate(t *testing.T) {
	report := model.PeriodReport{
		PeriodStart: time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC),
		TotalPaid:   decimal.RequireFromString("544"),
		BestProfession: &model.ProfessionEarnings{
			Profession: "Programmer",
			Total:      decimal.RequireFromString("202"),
		},
		Clients: []model.ClientEarnings{
			{ID: uuid.New(), FirstName: "Ash", LastName: "Ketchum", Total: decimal.RequireFromString("442")},
		},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "%PDF"))
	require.Greater(t, len(content), 1000)
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.PeriodReport{TotalPaid: decimal.Zero})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "%PDF"))
}
