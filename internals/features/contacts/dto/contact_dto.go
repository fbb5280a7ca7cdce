package dto

import (
	"strings"
	"time"

	"portfolio_backend/internals/features/contacts/model"
	"portfolio_backend/internals/features/crud"

	"github.com/google/uuid"
)

type SubmitContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
	Phone   string `json:"phone" validate:"max=30"`
	Company string `json:"company" validate:"max=100"`
}

func (r SubmitContactRequest) ToModel(ip, userAgent string) *model.ContactModel {
	return &model.ContactModel{
		Base:      crud.Base{IsActive: true},
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.ToLower(strings.TrimSpace(r.Email)),
		Subject:   strings.TrimSpace(r.Subject),
		Message:   strings.TrimSpace(r.Message),
		Phone:     strings.TrimSpace(r.Phone),
		Company:   strings.TrimSpace(r.Company),
		Status:    model.StatusNew,
		IPAddress: ip,
		UserAgent: userAgent,
	}
}

// SubmitContactResponse is what the public submitter gets back.
type SubmitContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToSubmitResponse(m *model.ContactModel) SubmitContactResponse {
	return SubmitContactResponse{ID: m.ID, Name: m.Name, Email: m.Email, Subject: m.Subject, CreatedAt: m.CreatedAt}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied closed"`
}

type ReplyRequest struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type ContactStats struct {
	TotalMessages int64            `json:"totalMessages"`
	Unread        int64            `json:"unread"`
	Spam          int64            `json:"spam"`
	ByStatus      map[string]int64 `json:"byStatus"`
	Monthly       []MonthlyCount   `json:"monthly"`
}

// MonthlyBuckets counts timestamps into the trailing months ending with
// now's month, oldest first, formatted YYYY-MM.
func MonthlyBuckets(now time.Time, months int, stamps []time.Time) []MonthlyCount {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]MonthlyCount, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyCount{Month: key}
		index[key] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.UTC().Format("2006-01")]; ok {
			out[i].Count++
		}
	}
	return out
}
