package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateTitle      = errors.New("course title already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInUse               = errors.New("record is referenced by other records")
)

// User roles.
const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// Purchase states.
const (
	PurchasePending   = "PENDING"
	PurchaseCompleted = "COMPLETED"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// User is a registered account.
type User struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	CPF             string     `json:"cpf"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	Credits         int        `json:"credits"`
	Plan            string     `json:"plan,omitempty"`
	AcceptedTermsAt *time.Time `json:"acceptedTermsAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IsAdmin reports whether the user has the administrator role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// NewUser carries the fields needed to create a user.
type NewUser struct {
	Name            string
	Email           string
	CPF             string
	PasswordHash    string
	Role            string
	Credits         int
	Plan            string
	AcceptedTermsAt *time.Time
}

// UserRepo manages accounts and their credit balance.
type UserRepo interface {
	// Create inserts a user. The email is stored lowercased and must be
	// unique (ErrDuplicateEmail).
	Create(ctx context.Context, u NewUser) (User, error)

	Get(ctx context.Context, id int) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)

	// AdjustCredits adds delta (possibly negative) to the balance and
	// returns the new balance. It fails with ErrInsufficientCredits rather
	// than drive the balance below zero.
	AdjustCredits(ctx context.Context, id, delta int) (int, error)

	// SetCredits overwrites the balance.
	SetCredits(ctx context.Context, id, credits int) error
}

// Course is a certification subject.
type Course struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PriceCents    int       `json:"priceCents"`
	DurationHours int       `json:"durationHours"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	Modules       []string  `json:"modules,omitempty"`
}

// NewCourse carries the fields needed to create a course.
type NewCourse struct {
	Title         string
	Description   string
	PriceCents    int
	DurationHours int
	Modules       []string
}

// CourseSummary is a course with issuance figures for the admin view.
type CourseSummary struct {
	Course
	Certificates int `json:"certificates"`
	Learners     int `json:"learners"`
}

// CourseRepo manages the course catalog.
type CourseRepo interface {
	// Create inserts a course with its modules. Titles are unique
	// (ErrDuplicateTitle).
	Create(ctx context.Context, c NewCourse) (Course, error)

	// Get returns a course with its modules.
	Get(ctx context.Context, id int) (Course, error)
	ByTitle(ctx context.Context, title string) (Course, error)

	// List returns courses ordered by title, without modules.
	List(ctx context.Context, publishedOnly bool) ([]Course, error)

	Summaries(ctx context.Context) ([]CourseSummary, error)

	// Delete removes a course and its modules. A course with issued
	// certificates cannot be deleted (ErrInUse).
	Delete(ctx context.Context, id int) error
}

// Certificate is an issued certificate.
type Certificate struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	UserID    int       `json:"userId"`
	CourseID  int       `json:"courseId"`
	AttemptID string    `json:"attemptId"`
	Score     int       `json:"score"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// CertificateDetail joins a certificate with what is printed on it.
type CertificateDetail struct {
	Certificate
	UserName      string   `json:"userName"`
	UserEmail     string   `json:"userEmail"`
	UserCPF       string   `json:"userCpf"`
	CourseTitle   string   `json:"courseTitle"`
	DurationHours int      `json:"durationHours"`
	Modules       []string `json:"modules,omitempty"`
}

// ConsumeParams identifies the attempt a credit is spent on. ID and Code
// are used only when a new certificate is created.
type ConsumeParams struct {
	UserID    int
	CourseID  int
	AttemptID string
	Score     int
	ID        string
	Code      string
}

// ConsumeOutcome is the result of ConsumeCredit.
type ConsumeOutcome struct {
	Certificate Certificate
	Remaining   int
	// Existing is set when the attempt already had a certificate and no
	// credit was spent.
	Existing bool
}

// CertificateRepo issues and queries certificates.
type CertificateRepo interface {
	// ConsumeCredit decrements the user's balance and records the
	// certificate in one transaction. A repeated call for the same
	// (user, course, attempt) returns the existing certificate without
	// spending. A zero balance yields ErrInsufficientCredits.
	ConsumeCredit(ctx context.Context, p ConsumeParams) (ConsumeOutcome, error)

	Get(ctx context.Context, id string) (CertificateDetail, error)
	ByCode(ctx context.Context, code string) (CertificateDetail, error)
	ListByUser(ctx context.Context, userID int) ([]CertificateDetail, error)
	List(ctx context.Context, limit int) ([]CertificateDetail, error)
	Delete(ctx context.Context, id string) error
}

// Purchase is a completed credit purchase.
type Purchase struct {
	ID          string    `json:"id"`
	UserID      int       `json:"userId"`
	AmountCents int       `json:"amountCents"`
	Credits     int       `json:"credits"`
	Status      string    `json:"status"`
	BillingID   string    `json:"billingId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentParams describes a paid billing reported by the payment webhook.
type PaymentParams struct {
	EventID     string
	Kind        string
	Email       string
	BillingID   string
	AmountCents int
	Credits     int
	PurchaseID  string
}

// PaymentOutcome reports what ApplyPayment did.
type PaymentOutcome struct {
	Applied   bool
	Duplicate bool
	// UnknownUser is set when no account matches the customer email.
	UnknownUser bool
	UserID      int
	Balance     int
	Purchase    *Purchase
}

// PurchaseRepo records payments.
type PurchaseRepo interface {
	// ApplyPayment records the event id, credits the user and stores the
	// purchase in one transaction. A replayed event id changes nothing.
	ApplyPayment(ctx context.Context, p PaymentParams) (PaymentOutcome, error)

	ListByUser(ctx context.Context, userID int) ([]Purchase, error)
}

// Attempt is a finished exam attempt.
type Attempt struct {
	ID           string    `json:"id"`
	UserID       int       `json:"userId"`
	CourseID     int       `json:"courseId"`
	CorrectCount int       `json:"correctCount"`
	Passed       bool      `json:"passed"`
	TimedOut     bool      `json:"timedOut"`
	Source       string    `json:"source"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// AttemptRepo stores finished exam attempts.
type AttemptRepo interface {
	Record(ctx context.Context, a Attempt) error
	ListByUser(ctx context.Context, userID int) ([]Attempt, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to the LLM event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns nil when the id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
