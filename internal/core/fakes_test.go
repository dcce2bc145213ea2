package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/models"
)

// In-memory fakes for the storage interfaces. They reproduce the load-bearing
// query semantics (ordering, not-found sentinels, field merges) so service
// tests run without Firestore.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("username '%s': %w", username, db.ErrNotFound)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user '%s' already exists", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	for key, value := range fields {
		switch key {
		case "email":
			user.Email = value.(string)
		case "emailVerified":
			user.EmailVerified = value.(bool)
		case "pendingEmail":
			if value == nil {
				user.PendingEmail = ""
			} else {
				user.PendingEmail = value.(string)
			}
		case "role":
			user.Role = value.(string)
		case "gender":
			user.Gender = value.(string)
		case "dateOfBirth":
			user.DateOfBirth = value.(string)
		case "profilePicture":
			user.ProfilePicture = value.(string)
		case "disabled":
			user.Disabled = value.(bool)
		case "disabledReason":
			if value == nil {
				user.DisabledReason = ""
			} else {
				user.DisabledReason = value.(string)
			}
		case "disabledAt":
			if value == nil {
				user.DisabledAt = nil
			} else {
				t := value.(time.Time)
				user.DisabledAt = &t
			}
		case "subscriptionStatus":
			user.SubscriptionStatus = value.(string)
		case "subscriptionStartDate":
			t := value.(time.Time)
			user.SubscriptionStartDate = &t
		case "subscriptionEndDate":
			t := value.(time.Time)
			user.SubscriptionEndDate = &t
		}
	}
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

type fakeMoodRepo struct {
	mu      sync.Mutex
	nextID  int
	entries []*models.MoodEntry
}

func newFakeMoodRepo() *fakeMoodRepo {
	return &fakeMoodRepo{}
}

func (r *fakeMoodRepo) FindByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*models.MoodEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.MoodEntry
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		if entry.Date.Before(from) || entry.Date.After(to) {
			continue
		}
		copied := *entry
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	return matched, nil
}

func (r *fakeMoodRepo) Create(ctx context.Context, entry *models.MoodEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("mood-%d", r.nextID)
	copied := *entry
	r.entries = append(r.entries, &copied)
	return entry.ID, nil
}

func (r *fakeMoodRepo) UpdateMood(ctx context.Context, entryID, moodID, moodLabel string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.ID == entryID {
			entry.MoodID = moodID
			entry.MoodLabel = moodLabel
			entry.UpdatedAt = updatedAt
			return nil
		}
	}
	return fmt.Errorf("mood entry '%s': %w", entryID, db.ErrNotFound)
}

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int
	appts  []*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	appt.ID = fmt.Sprintf("appt-%d", r.nextID)
	copied := *appt
	r.appts = append(r.appts, &copied)
	return appt.ID, nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appts {
		if appt.ID == appointmentID {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("appointment '%s': %w", appointmentID, db.ErrNotFound)
}

func (r *fakeAppointmentRepo) ListPendingByUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*models.Appointment
	for _, appt := range r.appts {
		if appt.UserID == userID && appt.PaymentStatus == models.AppointmentPaymentPending {
			copied := *appt
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.After(pending[j].CreatedAt) })
	return pending, nil
}

func (r *fakeAppointmentRepo) MarkPaid(ctx context.Context, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appts {
		if appt.ID == appointmentID {
			appt.PaymentStatus = models.AppointmentPaymentPaid
			return nil
		}
	}
	return fmt.Errorf("appointment '%s': %w", appointmentID, db.ErrNotFound)
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   int
	payments []*models.Payment
	failSet  map[string]error // docID -> error forced on SetStatus
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{failSet: make(map[string]error)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("pay-%d", r.nextID)
	payment.ID = id
	payment.PaymentID = id
	copied := *payment
	r.payments = append(r.payments, &copied)
	return id, nil
}

func (r *fakePaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.PaymentID == paymentID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("payment '%s': %w", paymentID, db.ErrNotFound)
}

func (r *fakePaymentRepo) SetMethod(ctx context.Context, docID, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.ID == docID {
			payment.PaymentMethod = method
			return nil
		}
	}
	return fmt.Errorf("payment doc '%s': %w", docID, db.ErrNotFound)
}

func (r *fakePaymentRepo) SetStatus(ctx context.Context, docID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failSet[docID]; ok {
		return err
	}
	for _, payment := range r.payments {
		if payment.ID == docID {
			payment.Status = status
			return nil
		}
	}
	return fmt.Errorf("payment doc '%s': %w", docID, db.ErrNotFound)
}

func (r *fakePaymentRepo) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			copied := *payment
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, nil
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	nextID int
	subs   []*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{}
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("sub-%d", r.nextID)
	sub.ID = id
	sub.SubscriptionID = id
	copied := *sub
	r.subs = append(r.subs, &copied)
	return id, nil
}

func (r *fakeSubscriptionRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.SubscriptionID == subscriptionID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("subscription '%s': %w", subscriptionID, db.ErrNotFound)
}

func (r *fakeSubscriptionRepo) SetMethod(ctx context.Context, docID, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.ID == docID {
			sub.PaymentMethod = method
			return nil
		}
	}
	return fmt.Errorf("subscription doc '%s': %w", docID, db.ErrNotFound)
}

func (r *fakeSubscriptionRepo) SetStatus(ctx context.Context, docID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.ID == docID {
			sub.Status = status
			return nil
		}
	}
	return fmt.Errorf("subscription doc '%s': %w", docID, db.ErrNotFound)
}

type fakePaymentEventRepo struct {
	mu     sync.Mutex
	events []*models.PaymentEvent
}

func newFakePaymentEventRepo() *fakePaymentEventRepo {
	return &fakePaymentEventRepo{}
}

func (r *fakePaymentEventRepo) Create(ctx context.Context, event *models.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *fakePaymentEventRepo) GetPendingByPaymentID(ctx context.Context, paymentID string) (*models.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.PaymentID == paymentID && event.Status == models.PaymentEventPending {
			copied := *event
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("no pending event for payment '%s': %w", paymentID, db.ErrNotFound)
}

func (r *fakePaymentEventRepo) ListPending(ctx context.Context) ([]*models.PaymentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*models.PaymentEvent
	for _, event := range r.events {
		if event.Status == models.PaymentEventPending {
			copied := *event
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (r *fakePaymentEventRepo) MarkApplied(ctx context.Context, eventID string, appliedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.ID == eventID {
			event.Status = models.PaymentEventApplied
			event.UpdatedAt = appliedAt
			return nil
		}
	}
	return fmt.Errorf("event '%s': %w", eventID, db.ErrNotFound)
}

func (r *fakePaymentEventRepo) IncrementAttempts(ctx context.Context, eventID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.ID == eventID {
			event.Attempts++
			event.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("event '%s': %w", eventID, db.ErrNotFound)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(ctx context.Context, logEntry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry)
	return nil
}

// fakeIdentityProvider is a canned Identity Toolkit. Accounts are keyed by
// email; signIn checks the stored password.
type fakeIdentityProvider struct {
	mu       sync.Mutex
	nextUID  int
	accounts map[string]*fakeAccount // keyed by email
	oobCalls []string                // recorded requestType values
	signUpErr error
}

type fakeAccount struct {
	uid      string
	password string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{accounts: make(map[string]*fakeAccount)}
}

func (p *fakeIdentityProvider) addAccount(uid, email, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[email] = &fakeAccount{uid: uid, password: password}
}

func (p *fakeIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	account, ok := p.accounts[email]
	if !ok {
		return nil, &identity.APIError{Code: "EMAIL_NOT_FOUND", HTTPStatus: 400}
	}
	if account.password != password {
		return nil, &identity.APIError{Code: "INVALID_PASSWORD", HTTPStatus: 400}
	}
	return &identity.AuthResult{UID: account.uid, Email: email, IDToken: "token-" + account.uid, RefreshToken: "refresh-" + account.uid}, nil
}

func (p *fakeIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	if _, exists := p.accounts[email]; exists {
		return nil, &identity.APIError{Code: "EMAIL_EXISTS", HTTPStatus: 400}
	}
	p.nextUID++
	uid := fmt.Sprintf("uid-%d", p.nextUID)
	p.accounts[email] = &fakeAccount{uid: uid, password: password}
	return &identity.AuthResult{UID: uid, Email: email, IDToken: "token-" + uid, RefreshToken: "refresh-" + uid}, nil
}

func (p *fakeIdentityProvider) SendOobCode(ctx context.Context, requestType, idToken, newEmail string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.oobCalls = append(p.oobCalls, requestType)
	return nil
}

func (p *fakeIdentityProvider) UpdatePassword(ctx context.Context, idToken, newPassword string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, account := range p.accounts {
		if "token-"+account.uid == idToken {
			account.password = newPassword
			return &identity.AuthResult{UID: account.uid, IDToken: idToken}, nil
		}
	}
	return nil, &identity.APIError{Code: "INVALID_ID_TOKEN", HTTPStatus: 401}
}

func (p *fakeIdentityProvider) Lookup(ctx context.Context, idToken string) (*identity.UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for email, account := range p.accounts {
		if "token-"+account.uid == idToken {
			return &identity.UserInfo{UID: account.uid, Email: email}, nil
		}
	}
	return nil, &identity.APIError{Code: "INVALID_ID_TOKEN", HTTPStatus: 401}
}

type fakePsychologistRepo struct {
	mu     sync.Mutex
	psychs []*models.Psychologist
}

func newFakePsychologistRepo() *fakePsychologistRepo {
	return &fakePsychologistRepo{}
}

func (r *fakePsychologistRepo) ListAvailable(ctx context.Context) ([]*models.Psychologist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var available []*models.Psychologist
	for _, p := range r.psychs {
		if p.IsAvailable {
			copied := *p
			available = append(available, &copied)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].Name < available[j].Name })
	return available, nil
}

func (r *fakePsychologistRepo) GetByID(ctx context.Context, psychologistID string) (*models.Psychologist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.psychs {
		if p.ID == psychologistID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("psychologist '%s': %w", psychologistID, db.ErrNotFound)
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules []*models.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{}
}

func (r *fakeScheduleRepo) ListByPsychologist(ctx context.Context, psychologistID string) ([]*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Schedule
	for _, s := range r.schedules {
		if s.PsychologistID == psychologistID {
			copied := *s
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

type fakeConsultationRepo struct {
	mu            sync.Mutex
	nextID        int
	consultations []*models.Consultation
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{}
}

func (r *fakeConsultationRepo) Create(ctx context.Context, c *models.Consultation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = fmt.Sprintf("consult-%d", r.nextID)
	copied := *c
	r.consultations = append(r.consultations, &copied)
	return c.ID, nil
}

func (r *fakeConsultationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Consultation
	for _, c := range r.consultations {
		if c.UserID == userID {
			copied := *c
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (r *fakeConsultationRepo) UpdateStatus(ctx context.Context, consultationID, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.consultations {
		if c.ID == consultationID {
			c.Status = status
			c.UpdatedAt = updatedAt
			return nil
		}
	}
	return fmt.Errorf("consultation '%s': %w", consultationID, db.ErrNotFound)
}

// fakeAuthAdmin stands in for the Firebase Admin Auth client.
type fakeAuthAdmin struct {
	mu       sync.Mutex
	verified map[string]bool
	revoked  []string
}

func newFakeAuthAdmin() *fakeAuthAdmin {
	return &fakeAuthAdmin{verified: make(map[string]bool)}
}

func (a *fakeAuthAdmin) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &fbauth.UserRecord{
		UserInfo:      &fbauth.UserInfo{UID: uid},
		EmailVerified: a.verified[uid],
	}, nil
}

func (a *fakeAuthAdmin) RevokeRefreshTokens(ctx context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked = append(a.revoked, uid)
	return nil
}

// recordingPublisher captures published messages.
type recordingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *recordingPublisher) Publish(queueName string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, body)
	return nil
}

// recordingMailer captures sent emails.
type recordingMailer struct {
	mu         sync.Mutex
	recipients []string
}

func (m *recordingMailer) Send(recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, recipient)
	return nil
}
