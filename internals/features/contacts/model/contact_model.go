package model

import (
	"time"

	"portfolio_backend/internals/features/crud"
)

const (
	StatusNew     = "new"
	StatusRead    = "read"
	StatusReplied = "replied"
	StatusClosed  = "closed"
)

var Statuses = []string{StatusNew, StatusRead, StatusReplied, StatusClosed}

var statusRank = map[string]int{
	StatusNew:     0,
	StatusRead:    1,
	StatusReplied: 2,
	StatusClosed:  3,
}

// CanTransition is the only place the moderation lifecycle is decided:
// status only moves forward and closed is terminal.
func CanTransition(from, to string) bool {
	rf, okFrom := statusRank[from]
	rt, okTo := statusRank[to]
	if !okFrom || !okTo || from == StatusClosed {
		return false
	}
	return rt > rf
}

// ContactModel never leaves the table; "deleting" closes it.
type ContactModel struct {
	crud.Base
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Subject      string     `gorm:"type:varchar(200);not null" json:"subject"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone"`
	Company      string     `gorm:"type:varchar(100)" json:"company"`
	Status       string     `gorm:"type:varchar(10);not null;default:new;index" json:"status"`
	IsSpam       bool       `gorm:"not null;default:false;index" json:"isSpam"`
	IPAddress    string     `gorm:"type:varchar(64)" json:"ipAddress"`
	UserAgent    string     `gorm:"type:text" json:"userAgent"`
	ReadAt       *time.Time `json:"readAt"`
	RepliedAt    *time.Time `json:"repliedAt"`
	ReplyMessage string     `gorm:"type:text" json:"replyMessage"`
}

func (ContactModel) TableName() string { return "contact_messages" }
