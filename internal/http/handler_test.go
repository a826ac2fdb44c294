package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/config"
	"github.com/abzalbek/gigdesk-ledger/internal/excel"
	"github.com/abzalbek/gigdesk-ledger/internal/http/middleware"
	"github.com/abzalbek/gigdesk-ledger/internal/logger"
	"github.com/abzalbek/gigdesk-ledger/internal/model"
	"github.com/abzalbek/gigdesk-ledger/internal/pdf"
	"github.com/abzalbek/gigdesk-ledger/internal/repository"
	"github.com/abzalbek/gigdesk-ledger/internal/service"
)

// fakeStore backs every store interface the handlers need.
type fakeStore struct {
	profiles  map[uuid.UUID]model.Profile
	contracts []model.Contract
	jobs      map[uuid.UUID]model.JobWithContract

	professions []model.ProfessionEarnings
	clients     []model.ClientEarnings
}

func (f *fakeStore) ProfileByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if profile, ok := f.profiles[id]; ok {
		copied := profile
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) ContractForParty(_ context.Context, contractID, partyID uuid.UUID) (*model.Contract, error) {
	for _, contract := range f.contracts {
		if contract.ID == contractID && (contract.ClientID == partyID || contract.ContractorID == partyID) {
			copied := contract
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) ContractsForParty(_ context.Context, partyID uuid.UUID) ([]model.Contract, error) {
	var result []model.Contract
	for _, contract := range f.contracts {
		if contract.Status == model.ContractStatusTerminated {
			continue
		}
		if contract.ClientID == partyID || contract.ContractorID == partyID {
			result = append(result, contract)
		}
	}
	return result, nil
}

func (f *fakeStore) UnpaidJobsForParty(_ context.Context, partyID uuid.UUID) ([]model.Job, error) {
	var result []model.Job
	for _, job := range f.jobs {
		if job.Paid || job.ContractStatus != model.ContractStatusInProgress {
			continue
		}
		if job.ClientID == partyID || job.ContractorID == partyID {
			result = append(result, job.Job)
		}
	}
	return result, nil
}

func (f *fakeStore) InTransaction(_ context.Context, fn func(repository.Tx) error) error {
	return fn(&fakeTx{store: f})
}

func (f *fakeStore) ProfessionEarnings(_ context.Context, _, _ time.Time) ([]model.ProfessionEarnings, error) {
	return f.professions, nil
}

func (f *fakeStore) ClientEarnings(_ context.Context, _, _ time.Time, limit int) ([]model.ClientEarnings, error) {
	if limit <= len(f.clients) {
		return f.clients[:limit], nil
	}
	return f.clients, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) JobForUpdate(id uuid.UUID) (*model.JobWithContract, error) {
	if job, ok := t.store.jobs[id]; ok {
		return &job, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *fakeTx) ProfilesForUpdate(ids ...uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	result := make(map[uuid.UUID]*model.Profile, len(ids))
	for _, id := range ids {
		if profile, ok := t.store.profiles[id]; ok {
			copied := profile
			result[id] = &copied
		}
	}
	return result, nil
}

func (t *fakeTx) UnpaidTotalForClient(clientID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, job := range t.store.jobs {
		if !job.Paid && job.ClientID == clientID && job.ContractStatus == model.ContractStatusInProgress {
			total = total.Add(job.Price)
		}
	}
	return total, nil
}

func (t *fakeTx) SetBalance(profileID uuid.UUID, balance decimal.Decimal) error {
	profile := t.store.profiles[profileID]
	profile.Balance = balance
	t.store.profiles[profileID] = profile
	return nil
}

func (t *fakeTx) MarkJobPaid(jobID uuid.UUID, paidAt time.Time) error {
	job := t.store.jobs[jobID]
	job.Paid = true
	job.PaymentDate = &paidAt
	t.store.jobs[jobID] = job
	return nil
}

type fixture struct {
	router     *gin.Engine
	store      *fakeStore
	client     model.Profile
	contractor model.Profile
	contract   model.Contract
	jobID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := model.Profile{
		ID:        uuid.New(),
		FirstName: "Harry",
		LastName:  "Potter",
		Type:      model.ProfileTypeClient,
		Balance:   decimal.RequireFromString("1150.00"),
	}
	contractor := model.Profile{
		ID:         uuid.New(),
		FirstName:  "Linus",
		LastName:   "Torvalds",
		Profession: "Programmer",
		Type:       model.ProfileTypeContractor,
		Balance:    decimal.RequireFromString("64.00"),
	}
	contract := model.Contract{
		ID:           uuid.New(),
		ClientID:     client.ID,
		ContractorID: contractor.ID,
		Terms:        "bla bla bla",
		Status:       model.ContractStatusInProgress,
	}
	jobID := uuid.New()

	store := &fakeStore{
		profiles:  map[uuid.UUID]model.Profile{client.ID: client, contractor.ID: contractor},
		contracts: []model.Contract{contract},
		jobs: map[uuid.UUID]model.JobWithContract{
			jobID: {
				Job: model.Job{
					ID:          jobID,
					ContractID:  contract.ID,
					Description: "work",
					Price:       decimal.RequireFromString("201.00"),
				},
				ContractStatus: model.ContractStatusInProgress,
				ClientID:       client.ID,
				ContractorID:   contractor.ID,
			},
		},
		professions: []model.ProfessionEarnings{
			{Profession: "Programmer", Total: decimal.RequireFromString("202")},
		},
		clients: []model.ClientEarnings{
			{ID: client.ID, FirstName: "Harry", LastName: "Potter", Total: decimal.RequireFromString("442")},
			{ID: uuid.New(), FirstName: "Mr", LastName: "Robot", Total: decimal.RequireFromString("200")},
			{ID: uuid.New(), FirstName: "John", LastName: "Snow", Total: decimal.RequireFromString("21")},
		},
	}

	cfg := &config.Config{Ledger: config.LedgerConfig{
		DepositCapRatio:     decimal.RequireFromString("0.25"),
		DefaultClientsLimit: 2,
	}}
	log := logger.New("test")

	handler := NewHandler(
		service.NewLedgerService(store),
		service.NewPaymentService(store, cfg),
		service.NewReportService(store, excel.NewGenerator(), pdf.NewGenerator(), cfg),
		log,
	)
	router := NewRouter(handler, middleware.Profile(store), "test")

	return &fixture{
		router:     router,
		store:      store,
		client:     client,
		contractor: contractor,
		contract:   contract,
		jobID:      jobID,
	}
}

func (f *fixture) perform(t *testing.T, method, path, profileID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if profileID != "" {
		req.Header.Set("profile_id", profileID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func TestAuthentication(t *testing.T) {
	fix := newFixture(t)

	t.Run("missing header", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/contracts", "", "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/contracts", "not-a-uuid", "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/contracts", uuid.NewString(), "")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("admin routes are open", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/best-profession", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestContractEndpoints(t *testing.T) {
	fix := newFixture(t)

	t.Run("get contract as client", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/contracts/"+fix.contract.ID.String(), fix.client.ID.String(), "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		contract := payload["contract"].(map[string]any)
		require.Equal(t, fix.contract.ID.String(), contract["id"])
		require.Equal(t, "bla bla bla", contract["terms"])
		require.Equal(t, "client", contract["client"].(map[string]any)["type"])
		require.Equal(t, "contractor", contract["contractor"].(map[string]any)["type"])
	})

	t.Run("contract hidden from unrelated profile", func(t *testing.T) {
		outsider := model.Profile{ID: uuid.New(), Type: model.ProfileTypeClient}
		fix.store.profiles[outsider.ID] = outsider

		recorder := fix.perform(t, http.MethodGet, "/contracts/"+fix.contract.ID.String(), outsider.ID.String(), "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("list contracts", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/contracts", fix.contractor.ID.String(), "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		require.Len(t, payload["contracts"], 1)
	})

	t.Run("list unpaid jobs", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/jobs/unpaid", fix.client.ID.String(), "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		jobs := payload["jobs"].([]any)
		require.Len(t, jobs, 1)
		require.Equal(t, "201.00", jobs[0].(map[string]any)["price"])
	})
}

func TestPayJobEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/jobs/"+fix.jobID.String()+"/pay", fix.client.ID.String(), "")
		require.Equal(t, http.StatusOK, recorder.Code)

		require.Equal(t, "949.00", fix.store.profiles[fix.client.ID].Balance.StringFixed(2))
		require.Equal(t, "265.00", fix.store.profiles[fix.contractor.ID].Balance.StringFixed(2))
	})

	t.Run("contractor is forbidden", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/jobs/"+fix.jobID.String()+"/pay", fix.contractor.ID.String(), "")
		require.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("double pay", func(t *testing.T) {
		fix := newFixture(t)
		first := fix.perform(t, http.MethodPost, "/jobs/"+fix.jobID.String()+"/pay", fix.client.ID.String(), "")
		require.Equal(t, http.StatusOK, first.Code)

		second := fix.perform(t, http.MethodPost, "/jobs/"+fix.jobID.String()+"/pay", fix.client.ID.String(), "")
		require.Equal(t, http.StatusBadRequest, second.Code)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		fix := newFixture(t)
		broke := fix.store.profiles[fix.client.ID]
		broke.Balance = decimal.Zero
		fix.store.profiles[fix.client.ID] = broke

		recorder := fix.perform(t, http.MethodPost, "/jobs/"+fix.jobID.String()+"/pay", fix.client.ID.String(), "")
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", fix.client.ID.String(), "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestDepositEndpoint(t *testing.T) {
	t.Run("over the cap reports the limit", func(t *testing.T) {
		fix := newFixture(t)
		// Second unpaid job raises the unpaid total to 402, cap 100.50.
		secondJob := uuid.New()
		fix.store.jobs[secondJob] = model.JobWithContract{
			Job: model.Job{
				ID:         secondJob,
				ContractID: fix.contract.ID,
				Price:      decimal.RequireFromString("201.00"),
			},
			ContractStatus: model.ContractStatusInProgress,
			ClientID:       fix.client.ID,
			ContractorID:   fix.contractor.ID,
		}

		recorder := fix.perform(t, http.MethodPost, "/balances/deposit/"+fix.client.ID.String(), fix.client.ID.String(), `{"amount": 101}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		require.Contains(t, recorder.Body.String(), "100.50")

		ok := fix.perform(t, http.MethodPost, "/balances/deposit/"+fix.client.ID.String(), fix.client.ID.String(), `{"amount": 100}`)
		require.Equal(t, http.StatusOK, ok.Code)
		require.Equal(t, "1250.00", decode(t, ok)["newBalance"])
	})

	t.Run("someone else's account is forbidden", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/balances/deposit/"+uuid.NewString(), fix.client.ID.String(), `{"amount": 1}`)
		require.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("contractor is forbidden", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/balances/deposit/"+fix.contractor.ID.String(), fix.contractor.ID.String(), `{"amount": 1}`)
		require.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		fix := newFixture(t)
		recorder := fix.perform(t, http.MethodPost, "/balances/deposit/"+fix.client.ID.String(), fix.client.ID.String(), `{"amount": 0}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	fix := newFixture(t)

	t.Run("best profession", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/best-profession?start=2020-08-01&end=2020-08-31", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		require.Equal(t, "Programmer", payload["profession"])
		require.Equal(t, "202.00", payload["total_earnings"])
	})

	t.Run("best profession bad range", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/best-profession?start=2021-01-01&end=2020-01-01", "", "")
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("best profession empty", func(t *testing.T) {
		empty := newFixture(t)
		empty.store.professions = nil
		recorder := empty.perform(t, http.MethodGet, "/admin/best-profession", "", "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("best clients default limit", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/best-clients?start=2020-08-01&end=2020-08-31", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		clients := payload["clients"].([]any)
		require.Len(t, clients, 2)
		first := clients[0].(map[string]any)
		require.Equal(t, "Harry Potter", first["fullName"])
		require.Equal(t, "442.00", first["total_paid"])
	})

	t.Run("best clients invalid limit", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/best-clients?limit=zero", "", "")
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("get user", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/users/"+fix.client.ID.String(), "", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		payload := decode(t, recorder)
		require.Equal(t, "Harry", payload["firstName"])
		require.Equal(t, "1150.00", payload["balance"])
	})

	t.Run("unknown user", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/users/"+uuid.NewString(), "", "")
		require.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("export xlsx", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/reports/export?start=2020-08-01&end=2020-08-31", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", recorder.Header().Get("Content-Type"))
		require.Contains(t, recorder.Header().Get("Content-Disposition"), "ledger-report-20200801-20200831.xlsx")
		require.NotEmpty(t, recorder.Body.Bytes())
	})

	t.Run("export pdf", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/reports/export?format=pdf", "", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
		require.True(t, strings.HasPrefix(recorder.Body.String(), "%PDF"))
	})

	t.Run("export unknown format", func(t *testing.T) {
		recorder := fix.perform(t, http.MethodGet, "/admin/reports/export?format=csv", "", "")
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
