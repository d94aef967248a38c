package models

import "time"

type ClientRecord struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Status    *string    `json:"status"`
	IsOwner   *bool      `json:"is_owner"`
	CreatedAt *time.Time `json:"created_at" gorm:"autoCreateTime:false"`
}

func (ClientRecord) TableName() string { return "clients" }

type Client struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Status    string     `json:"status"`
	IsOwner   bool       `json:"is_owner"`
	CreatedAt *time.Time `json:"created_at"`
}

// IsActive treats a client without a status as active, matching how the back-office lists them.
func (c Client) IsActive() bool {
	return c.Status == "" || c.Status == "active"
}
