package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"portfolio_backend/internals/features/contacts/dto"
	"portfolio_backend/internals/features/contacts/model"
	"portfolio_backend/internals/features/crud"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/dispatch"
	"portfolio_backend/internals/helpers/mailer"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrInvalidTransition is a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

var Descriptor = &crud.Descriptor{
	Name:          "contact",
	Resource:      "Message",
	CountKey:      "totalMessages",
	Filters:       map[string]string{"status": "status"},
	BoolFilters:   map[string]string{"isSpam": "is_spam"},
	SearchColumns: []string{"name", "email", "subject", "message"},
	Sorts: map[string]string{
		"createdAt": "created_at",
		"status":    "status",
		"name":      "name",
		"email":     "email",
	},
	DefaultSort: "-createdAt",
	Schema:      schemas.Contact,
}

type ContactController struct {
	DB         *gorm.DB
	Repo       *crud.Repository[model.ContactModel]
	Dispatcher dispatch.Submitter
	Mailer     mailer.Mailer
	// NotifyTo receives the admin notification; empty disables it.
	NotifyTo string
}

func NewContactController(db *gorm.DB, d dispatch.Submitter, m mailer.Mailer, notifyTo string) *ContactController {
	return &ContactController{
		DB:         db,
		Repo:       crud.NewRepository[model.ContactModel](db, Descriptor),
		Dispatcher: d,
		Mailer:     m,
		NotifyTo:   notifyTo,
	}
}

func toMailContact(m *model.ContactModel) mailer.Contact {
	return mailer.Contact{
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Phone:     m.Phone,
		Company:   m.Company,
		CreatedAt: m.CreatedAt,
	}
}

// TransitionError names the rejected move.
type TransitionError struct{ From, To string }

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot change status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func httpError(err error) error {
	var te *TransitionError
	if errors.As(err, &te) {
		return fiber.NewError(fiber.StatusConflict, te.Error())
	}
	return crud.HTTPError(err, Descriptor.Resource)
}

// ======================
// POST /api/contact (public)
// ======================
func (ctrl *ContactController) SubmitContact(c *fiber.Ctx) error {
	var in dto.SubmitContactRequest
	if err := helper.DecodeAndValidate(c, Descriptor.Schema, &in); err != nil {
		return err
	}

	msg := in.ToModel(c.IP(), c.Get(fiber.HeaderUserAgent))
	if err := ctrl.Repo.Create(c.UserContext(), msg); err != nil {
		return httpError(err)
	}

	contact := toMailContact(msg)
	id := msg.ID.String()
	if ctrl.NotifyTo != "" {
		ctrl.Dispatcher.Submit("contact.notify "+id, func(ctx context.Context) error {
			m, err := mailer.Notification(ctrl.NotifyTo, contact)
			if err != nil {
				return err
			}
			return ctrl.Mailer.Send(ctx, m)
		})
	}
	ctrl.Dispatcher.Submit("contact.confirm "+id, func(ctx context.Context) error {
		m, err := mailer.Confirmation(contact)
		if err != nil {
			return err
		}
		return ctrl.Mailer.Send(ctx, m)
	})

	return helper.JsonCreated(c, "Thank you for your message! I will get back to you soon.", dto.ToSubmitResponse(msg))
}

// ======================
// GET /api/contact (admin)
// ======================
func (ctrl *ContactController) GetMessages(c *fiber.Ctx) error {
	filters, err := Descriptor.ParseFilters(c)
	if err != nil {
		return err
	}
	if s, ok := filters["status"].(string); ok && !validStatus(s) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status: "+s)
	}
	p := helper.ParseListParams(c, helper.DefaultOpts)
	items, total, err := ctrl.Repo.List(c.UserContext(), crud.ListQuery{
		ListParams: p,
		Filters:    filters,
		Privileged: true,
	})
	if err != nil {
		return err
	}
	return helper.JsonList(c, "", items, helper.BuildPagination(total, p.Page, p.Limit, Descriptor.CountKey))
}

func validStatus(s string) bool {
	for _, st := range model.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// ======================
// GET /api/contact/:id (admin) marks new messages read
// ======================
func (ctrl *ContactController) GetMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	msg, err := ctrl.Repo.FindByID(ctx, c.Params("id"), true)
	if err != nil {
		return httpError(err)
	}
	if msg.Status == model.StatusNew {
		now := time.Now()
		res := ctrl.DB.WithContext(ctx).Model(&model.ContactModel{}).
			Where("id = ? AND status = ?", msg.ID, model.StatusNew).
			Updates(map[string]any{"status": model.StatusRead, "read_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if msg, err = ctrl.Repo.FindByID(ctx, msg.ID.String(), true); err != nil {
			return httpError(err)
		}
	}
	return helper.JsonOK(c, "", msg)
}

// ======================
// PUT /api/contact/:id/status (admin, forward only)
// ======================
func (ctrl *ContactController) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := helper.DecodeAndValidate(c, Descriptor.Schema, &in); err != nil {
		return err
	}
	ctx := c.UserContext()
	msg, err := ctrl.Repo.FindByID(ctx, c.Params("id"), true)
	if err != nil {
		return httpError(err)
	}
	if msg.Status == in.Status {
		return helper.JsonUpdated(c, "Status unchanged", msg)
	}
	if !model.CanTransition(msg.Status, in.Status) {
		return httpError(&TransitionError{From: msg.Status, To: in.Status})
	}

	now := time.Now()
	fields := map[string]any{"status": in.Status, "updated_at": now}
	if msg.ReadAt == nil {
		fields["read_at"] = now
	}
	if in.Status == model.StatusReplied && msg.RepliedAt == nil {
		fields["replied_at"] = now
	}
	if err := ctrl.moveFrom(ctx, msg, fields); err != nil {
		return err
	}
	updated, err := ctrl.Repo.FindByID(ctx, msg.ID.String(), true)
	if err != nil {
		return httpError(err)
	}
	return helper.JsonUpdated(c, "Status updated successfully", updated)
}

// moveFrom applies fields only if the status is still the one that was
// checked, so concurrent moderation cannot move a message backwards.
func (ctrl *ContactController) moveFrom(ctx context.Context, msg *model.ContactModel, fields map[string]any) error {
	res := ctrl.DB.WithContext(ctx).Model(&model.ContactModel{}).
		Where("id = ? AND status = ?", msg.ID, msg.Status).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "Message status changed concurrently, reload and retry")
	}
	return nil
}

// ======================
// POST /api/contact/:id/reply (admin)
// ======================
func (ctrl *ContactController) ReplyToMessage(c *fiber.Ctx) error {
	var in dto.ReplyRequest
	if err := helper.DecodeAndValidate(c, nil, &in); err != nil {
		return err
	}
	ctx := c.UserContext()
	msg, err := ctrl.Repo.FindByID(ctx, c.Params("id"), true)
	if err != nil {
		return httpError(err)
	}
	if msg.Status == model.StatusClosed {
		return fiber.NewError(fiber.StatusConflict, "Cannot reply to a closed message")
	}

	mail, err := mailer.Reply(toMailContact(msg), in.Message)
	if err != nil {
		return err
	}
	// delivery first; the status only moves once the reply is out
	if err := ctrl.Mailer.Send(ctx, mail); err != nil {
		log.Printf("[MAIL] reply to message %s failed: %v", msg.ID, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to send reply email")
	}

	now := time.Now()
	fields := map[string]any{
		"status":        model.StatusReplied,
		"replied_at":    now,
		"reply_message": in.Message,
		"updated_at":    now,
	}
	if msg.ReadAt == nil {
		fields["read_at"] = now
	}
	if err := ctrl.moveFrom(ctx, msg, fields); err != nil {
		return err
	}
	updated, err := ctrl.Repo.FindByID(ctx, msg.ID.String(), true)
	if err != nil {
		return httpError(err)
	}
	return helper.JsonUpdated(c, "Reply sent successfully", updated)
}

// ======================
// PUT /api/contact/:id/spam (admin)
// ======================
func (ctrl *ContactController) MarkAsSpam(c *fiber.Ctx) error {
	return ctrl.close(c, true, "Message marked as spam")
}

// ======================
// DELETE /api/contact/:id (admin) closes the message
// ======================
func (ctrl *ContactController) DeleteMessage(c *fiber.Ctx) error {
	return ctrl.close(c, false, "Message closed successfully")
}

func (ctrl *ContactController) close(c *fiber.Ctx, spam bool, message string) error {
	ctx := c.UserContext()
	msg, err := ctrl.Repo.FindByID(ctx, c.Params("id"), true)
	if err != nil {
		return httpError(err)
	}
	fields := map[string]any{"status": model.StatusClosed, "updated_at": time.Now()}
	if spam {
		fields["is_spam"] = true
	}
	if err := ctrl.DB.WithContext(ctx).Model(&model.ContactModel{}).Where("id = ?", msg.ID).Updates(fields).Error; err != nil {
		return err
	}
	updated, err := ctrl.Repo.FindByID(ctx, msg.ID.String(), true)
	if err != nil {
		return httpError(err)
	}
	return helper.JsonUpdated(c, message, updated)
}

// ======================
// GET /api/contact/stats (admin)
// ======================
func (ctrl *ContactController) GetStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := ctrl.DB.WithContext(ctx)
	stats := dto.ContactStats{ByStatus: make(map[string]int64, len(model.Statuses))}
	for _, s := range model.Statuses {
		stats.ByStatus[s] = 0
	}

	if err := db.Model(&model.ContactModel{}).Count(&stats.TotalMessages).Error; err != nil {
		return err
	}
	if err := db.Model(&model.ContactModel{}).Where("is_spam = ?", true).Count(&stats.Spam).Error; err != nil {
		return err
	}
	var byStatus []crud.GroupCount
	if err := db.Model(&model.ContactModel{}).
		Select("status AS grp, COUNT(*) AS cnt").Group("status").
		Scan(&byStatus).Error; err != nil {
		return err
	}
	for _, g := range byStatus {
		stats.ByStatus[g.Key] = g.Count
	}
	stats.Unread = stats.ByStatus[model.StatusNew]

	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	var stamps []time.Time
	if err := db.Model(&model.ContactModel{}).Where("created_at >= ?", since.In(time.Local)).Pluck("created_at", &stamps).Error; err != nil {
		return err
	}
	stats.Monthly = dto.MonthlyBuckets(now, 12, stamps)

	return helper.JsonOK(c, "", stats)
}
