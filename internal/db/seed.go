package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fixed ids keep the seed idempotent across runs.
func seedID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

type seedProfile struct {
	id         int
	firstName  string
	lastName   string
	profession string
	kind       string
	balance    string
}

type seedContract struct {
	id         int
	client     int
	contractor int
	status     string
}

type seedJob struct {
	id       int
	contract int
	price    string
	paid     bool
	paidAt   string
}

var seedProfiles = []seedProfile{
	{1, "Harry", "Potter", "Wizard", "client", "1150.00"},
	{2, "Mr", "Robot", "Hacker", "client", "231.11"},
	{3, "John", "Snow", "Knows nothing", "client", "451.30"},
	{4, "Ash", "Ketchum", "Pokemon master", "client", "1.30"},
	{5, "John", "Lenon", "Musician", "contractor", "64.00"},
	{6, "Linus", "Torvalds", "Programmer", "contractor", "1214.00"},
	{7, "Alan", "Turing", "Programmer", "contractor", "22.00"},
	{8, "Aragorn", "Elessar", "Fighter", "contractor", "314.00"},
}

var seedContracts = []seedContract{
	{1, 1, 5, "terminated"},
	{2, 1, 6, "in_progress"},
	{3, 2, 6, "in_progress"},
	{4, 2, 7, "in_progress"},
	{5, 3, 8, "new"},
	{6, 3, 7, "in_progress"},
	{7, 4, 7, "in_progress"},
	{8, 4, 6, "in_progress"},
	{9, 4, 8, "in_progress"},
}

var seedJobs = []seedJob{
	{1, 1, "200.00", false, ""},
	{2, 2, "201.00", false, ""},
	{3, 3, "202.00", false, ""},
	{4, 4, "200.00", false, ""},
	{5, 7, "200.00", false, ""},
	{6, 7, "2020.00", true, "2020-08-15T19:11:26Z"},
	{7, 2, "200.00", true, "2020-08-15T19:11:26Z"},
	{8, 3, "200.00", true, "2020-08-16T19:11:26Z"},
	{9, 1, "200.00", true, "2020-08-17T19:11:26Z"},
	{10, 5, "200.00", true, "2020-08-17T19:11:26Z"},
	{11, 1, "21.00", true, "2020-08-10T19:11:26Z"},
	{12, 2, "21.00", true, "2020-08-15T19:11:26Z"},
	{13, 3, "121.00", true, "2020-08-15T19:11:26Z"},
	{14, 3, "121.00", true, "2020-08-14T23:11:26Z"},
}

// Seed loads the sample dataset. Existing rows are left untouched.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range seedProfiles {
			err := tx.Exec(`
				INSERT INTO profiles (id, first_name, last_name, profession, type, balance)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO NOTHING
			`, seedID(p.id), p.firstName, p.lastName, p.profession, p.kind, p.balance).Error
			if err != nil {
				return fmt.Errorf("seed profile %d: %w", p.id, err)
			}
		}

		for _, c := range seedContracts {
			err := tx.Exec(`
				INSERT INTO contracts (id, client_id, contractor_id, terms, status)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (id) DO NOTHING
			`, seedID(100+c.id), seedID(c.client), seedID(c.contractor), "bla bla bla", c.status).Error
			if err != nil {
				return fmt.Errorf("seed contract %d: %w", c.id, err)
			}
		}

		for _, j := range seedJobs {
			var paidAt *time.Time
			if j.paid {
				parsed, err := time.Parse(time.RFC3339, j.paidAt)
				if err != nil {
					return fmt.Errorf("seed job %d: %w", j.id, err)
				}
				paidAt = &parsed
			}
			err := tx.Exec(`
				INSERT INTO jobs (id, contract_id, description, price, paid, payment_date)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO NOTHING
			`, seedID(200+j.id), seedID(100+j.contract), "work", j.price, j.paid, paidAt).Error
			if err != nil {
				return fmt.Errorf("seed job %d: %w", j.id, err)
			}
		}

		return nil
	})
}
