// Package domain holds the CRM entity types exchanged with the resource API.
package domain

// Page is the paginated list envelope returned by every collection route.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}

type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

const (
	RoleAdmin     = "admin"
	RoleAssociate = "associate"
	RoleAnalyst   = "analyst"
)

type Company struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	LegalID       string           `json:"legal_id"`
	Country       string           `json:"country"`
	Website       string           `json:"website,omitempty"`
	Sector        string           `json:"sector"`
	Size          string           `json:"size"`
	Notes         string           `json:"notes,omitempty"`
	ContactsCount int              `json:"contacts_count"`
	DealsCount    int              `json:"deals_count"`
	Contacts      []ContactSummary `json:"contacts,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

type ContactSummary struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type Contact struct {
	ID          int    `json:"id"`
	Company     int    `json:"company"`
	CompanyName string `json:"company_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role,omitempty"`
	Seniority   string `json:"seniority"`
	LinkedinURL string `json:"linkedin_url,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Stage struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Order              int    `json:"order"`
	IsClosed           bool   `json:"is_closed"`
	IsWon              bool   `json:"is_won"`
	DefaultProbability int    `json:"default_probability"`
	DealsCount         int    `json:"deals_count"`
	CreatedAt          string `json:"created_at"`
}

type Deal struct {
	ID                int      `json:"id"`
	Title             string   `json:"title"`
	Company           int      `json:"company"`
	CompanyName       string   `json:"company_name,omitempty"`
	Owner             int      `json:"owner"`
	OwnerName         string   `json:"owner_name,omitempty"`
	Stage             int      `json:"stage"`
	StageName         string   `json:"stage_name,omitempty"`
	AmountEstimate    *float64 `json:"amount_estimate,omitempty"`
	Probability       int      `json:"probability"`
	ExpectedValue     *float64 `json:"expected_value,omitempty"`
	NextActionAt      string   `json:"next_action_at,omitempty"`
	IsOverdue         bool     `json:"is_overdue"`
	Description       string   `json:"description,omitempty"`
	InteractionsCount int      `json:"interactions_count,omitempty"`
	DocumentsCount    int      `json:"documents_count,omitempty"`
	TasksCount        int      `json:"tasks_count,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// KanbanDeal is the trimmed deal card used inside the kanban snapshot.
type KanbanDeal struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	CompanyName    string   `json:"company_name"`
	OwnerName      string   `json:"owner_name"`
	AmountEstimate *float64 `json:"amount_estimate,omitempty"`
	Probability    int      `json:"probability"`
	NextActionAt   string   `json:"next_action_at,omitempty"`
	IsOverdue      bool     `json:"is_overdue"`
}

// KanbanColumn is one pipeline stage of the grouped-by-stage board snapshot,
// holding its ordered deal list and count.
type KanbanColumn struct {
	Stage Stage        `json:"stage"`
	Deals []KanbanDeal `json:"deals"`
	Count int          `json:"count"`
}

type Task struct {
	ID            int    `json:"id"`
	Deal          int    `json:"deal,omitempty"`
	DealTitle     string `json:"deal_title,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	DueAt         string `json:"due_at,omitempty"`
	Status        string `json:"status"`
	Assignee      int    `json:"assignee"`
	AssigneeName  string `json:"assignee_name"`
	CreatedBy     int    `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
	IsOverdue     bool   `json:"is_overdue"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

const (
	TaskStatusTodo  = "todo"
	TaskStatusDoing = "doing"
	TaskStatusDone  = "done"
)

type Interaction struct {
	ID            int    `json:"id"`
	Deal          int    `json:"deal,omitempty"`
	DealTitle     string `json:"deal_title,omitempty"`
	Company       int    `json:"company,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	Contact       int    `json:"contact,omitempty"`
	ContactName   string `json:"contact_name,omitempty"`
	Type          string `json:"type"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	OccurredAt    string `json:"occurred_at"`
	Author        int    `json:"author"`
	AuthorName    string `json:"author_name"`
	RelatedEntity string `json:"related_entity,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type Document struct {
	ID             int    `json:"id"`
	Deal           int    `json:"deal,omitempty"`
	DealTitle      string `json:"deal_title,omitempty"`
	Filename       string `json:"filename"`
	File           string `json:"file"`
	FileURL        string `json:"file_url,omitempty"`
	Size           int64  `json:"size"`
	SizeHuman      string `json:"size_human,omitempty"`
	ContentType    string `json:"content_type"`
	FileExtension  string `json:"file_extension,omitempty"`
	UploadedBy     int    `json:"uploaded_by"`
	UploadedByName string `json:"uploaded_by_name"`
	UploadedAt     string `json:"uploaded_at"`
}

type NDA struct {
	ID           int       `json:"id"`
	Deal         int       `json:"deal"`
	DealTitle    string    `json:"deal_title,omitempty"`
	Counterparty string    `json:"counterparty"`
	Status       string    `json:"status"`
	SignedAt     string    `json:"signed_at,omitempty"`
	File         int       `json:"file,omitempty"`
	FileDetails  *Document `json:"file_details,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

const (
	NDAStatusDraft  = "draft"
	NDAStatusSent   = "sent"
	NDAStatusSigned = "signed"
)
