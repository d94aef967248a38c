package models

import "time"

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
	LeadClosed    LeadStatus = "closed"
)

// LeadRecord is a lead row as stored upstream. MLScore is written by an external
// scoring process and may be missing or non-numeric.
type LeadRecord struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	MLScore   *string    `json:"ml_score" gorm:"column:ml_score"`
	Status    *string    `json:"status"`
	BudgetMin *string    `json:"budget_min"`
	BudgetMax *string    `json:"budget_max"`
	CreatedAt *time.Time `json:"created_at" gorm:"autoCreateTime:false"`
}

func (LeadRecord) TableName() string { return "leads" }

type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	MLScore   *float64   `json:"ml_score"`
	Status    LeadStatus `json:"status"`
	BudgetMin *float64   `json:"budget_min"`
	BudgetMax *float64   `json:"budget_max"`
	CreatedAt *time.Time `json:"created_at"`
}

// RecordBatch groups records written together by the seed importer.
type RecordBatch struct {
	Properties []PropertyRecord
	Clients    []ClientRecord
	Leads      []LeadRecord
}

// Len returns the number of records in the batch.
func (b RecordBatch) Len() int {
	return len(b.Properties) + len(b.Clients) + len(b.Leads)
}

// RecordCounts reports how many rows each table holds.
type RecordCounts struct {
	Properties int64 `json:"properties"`
	Clients    int64 `json:"clients"`
	Leads      int64 `json:"leads"`
}
