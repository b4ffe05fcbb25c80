package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"discovery-api/models"
	"discovery-api/utils"
)

const deadlineSweepLock = "discovery:deadline-sweep"

// ErrSweepAlreadyRunning is returned when another replica holds the sweep lock.
var ErrSweepAlreadyRunning = errors.New("deadline sweep already running")

// MailSender delivers HTML mail. config.Mailer satisfies it.
type MailSender interface {
	Configured() bool
	Send(to []string, subject, htmlBody string) error
}

// SweepSummary reports what one sweep changed.
type SweepSummary struct {
	StatusesUpdated int
	RemindersSent   int
}

// DeadlineJob periodically re-derives stored deliverable statuses and sends
// deadline reminders to assignees.
type DeadlineJob struct {
	db            *gorm.DB
	deliverables  *DeliverableService
	notifications *NotificationService
	users         *UserService
	mailer        MailSender
	interval      time.Duration
	window        time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDeadlineJob wires the sweeper. mailer may be nil.
func NewDeadlineJob(db *gorm.DB, deliverables *DeliverableService, notifications *NotificationService, users *UserService, mailer MailSender, interval, window time.Duration) *DeadlineJob {
	return &DeadlineJob{
		db:            db,
		deliverables:  deliverables,
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		interval:      interval,
		window:        window,
	}
}

// Start runs one sweep immediately and then one per interval until Stop.
// A non-positive interval disables the job.
func (j *DeadlineJob) Start() {
	if j.interval <= 0 {
		log.Println("Deadline sweeper disabled (SWEEP_INTERVAL=0)")
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	go func() {
		defer close(j.done)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.runOnce(ctx)
			}
		}
	}()

	log.Printf("Deadline sweeper started (interval %s, reminder window %s)", j.interval, j.window)
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (j *DeadlineJob) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("Deadline sweeper stopped")
}

func (j *DeadlineJob) runOnce(ctx context.Context) {
	summary, err := j.Sweep(ctx)
	switch {
	case errors.Is(err, ErrSweepAlreadyRunning):
		log.Println("Deadline sweep skipped: lock held by another instance")
	case err != nil:
		log.Printf("Deadline sweep failed: %v", err)
	case summary.StatusesUpdated > 0 || summary.RemindersSent > 0:
		log.Printf("Deadline sweep: %d statuses updated, %d reminders sent", summary.StatusesUpdated, summary.RemindersSent)
	}
}

// Sweep performs one pass under a MySQL named lock held on a single pooled
// connection, so concurrent replicas skip instead of double-notifying.
func (j *DeadlineJob) Sweep(ctx context.Context) (SweepSummary, error) {
	var summary SweepSummary
	err := j.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var acquired int
		if err := conn.Raw("SELECT GET_LOCK(?, 0)", deadlineSweepLock).Scan(&acquired).Error; err != nil {
			return fmt.Errorf("acquire sweep lock: %w", err)
		}
		if acquired != 1 {
			return ErrSweepAlreadyRunning
		}
		defer func() {
			var released int
			if err := conn.Raw("SELECT RELEASE_LOCK(?)", deadlineSweepLock).Scan(&released).Error; err != nil {
				log.Printf("Warning: failed to release sweep lock: %v", err)
			}
		}()

		var err error
		summary, err = j.sweep(ctx)
		return err
	})
	return summary, err
}

func (j *DeadlineJob) sweep(ctx context.Context) (SweepSummary, error) {
	var summary SweepSummary

	updated, err := j.deliverables.RefreshStatuses(ctx)
	if err != nil {
		return summary, err
	}
	summary.StatusesUpdated = updated

	if j.window <= 0 {
		return summary, nil
	}

	due, err := j.deliverables.DueForReminder(ctx, j.window)
	if err != nil {
		return summary, err
	}
	for _, d := range due {
		if err := j.remind(ctx, d); err != nil {
			log.Printf("Warning: reminder for deliverable %s failed: %v", d.ID, err)
			continue
		}
		summary.RemindersSent++
	}
	return summary, nil
}

func (j *DeadlineJob) remind(ctx context.Context, d models.Deliverable) error {
	if d.AssignedTo == nil || d.Deadline == nil {
		return nil
	}

	deliverableID, projectID := d.ID, d.ProjectID
	_, err := j.notifications.Notify(ctx, NotificationInput{
		Recipients:    []string{*d.AssignedTo},
		Title:         "Deliverable due soon",
		Description:   fmt.Sprintf("%s is due %s", d.Name, utils.FormatDatePtr(d.Deadline)),
		Type:          models.NotificationDeadline,
		Priority:      models.PriorityHigh,
		ProjectID:     &projectID,
		DeliverableID: &deliverableID,
	})
	if err != nil {
		return err
	}
	if err := j.deliverables.MarkReminded(ctx, d.ID); err != nil {
		return err
	}

	j.mailReminder(ctx, d)
	return nil
}

func (j *DeadlineJob) mailReminder(ctx context.Context, d models.Deliverable) {
	if j.mailer == nil || !j.mailer.Configured() || j.users == nil {
		return
	}
	user, err := j.users.Get(ctx, *d.AssignedTo)
	if err != nil {
		log.Printf("Warning: reminder mail skipped for deliverable %s: %v", d.ID, err)
		return
	}

	mail := emailContent{
		Subject: "Deliverable due soon: " + d.Name,
		Paragraphs: []string{
			"Hello " + user.DisplayName() + ",",
			"The deliverable **" + d.Name + "** has not been uploaded yet and its deadline is approaching.",
		},
		Meta: []emailMetaItem{
			{Label: "Deliverable", Value: d.Name},
			{Label: "Format", Value: d.Format},
			{Label: "Deadline", Value: utils.FormatDate(d.Deadline.UTC()) + ", " + d.Deadline.UTC().Format("15:04") + " UTC"},
		},
	}
	if err := j.mailer.Send([]string{user.Email}, mail.Subject, mail.render()); err != nil {
		log.Printf("Warning: reminder mail to %s failed: %v", user.Email, err)
	}
}
