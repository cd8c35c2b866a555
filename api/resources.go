package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ListOptions carries the pagination and filter parameters shared by every
// list endpoint.
type ListOptions struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Keyword != "" {
		q.Set("keyword", o.Keyword)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	return q
}

// Project is a code-review project.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RepoURL     string    `json:"repo_url,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Issue is a tracked defect or task inside a project.
type Issue struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	Assignee  int64     `json:"assignee_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Review is one code-review record.
type Review struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Title      string    `json:"title"`
	CommitID   string    `json:"commit_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	AuthorID   int64     `json:"author_id,omitempty"`
	ReviewerID int64     `json:"reviewer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Account is a platform user as the user-management screens see it.
type Account struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// Notice is one entry of the notification center.
type Notice struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ProjectService covers project CRUD.
type ProjectService struct{ client *Client }

// NewProjectService creates a [ProjectService] over client.
func NewProjectService(client *Client) *ProjectService { return &ProjectService{client: client} }

// List returns one page of projects.
func (s *ProjectService) List(ctx context.Context, opts ListOptions) ([]Project, PageMeta, error) {
	var items []Project
	meta, err := s.client.GetPage(ctx, "/api/v1/projects", opts.query(), &items)
	return items, meta, err
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id int64) (*Project, error) {
	var p Project
	if err := s.client.Get(ctx, fmt.Sprintf("/api/v1/projects/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create registers a new project.
func (s *ProjectService) Create(ctx context.Context, p Project) (*Project, error) {
	var created Project
	if err := s.client.Post(ctx, "/api/v1/projects", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a project's mutable fields.
func (s *ProjectService) Update(ctx context.Context, p Project) error {
	return s.client.Put(ctx, fmt.Sprintf("/api/v1/projects/%d", p.ID), p, nil)
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/v1/projects/%d", id))
}

// IssueService covers issue CRUD.
type IssueService struct{ client *Client }

// NewIssueService creates an [IssueService] over client.
func NewIssueService(client *Client) *IssueService { return &IssueService{client: client} }

// List returns one page of issues.
func (s *IssueService) List(ctx context.Context, opts ListOptions) ([]Issue, PageMeta, error) {
	var items []Issue
	meta, err := s.client.GetPage(ctx, "/api/v1/issues", opts.query(), &items)
	return items, meta, err
}

// Get returns one issue.
func (s *IssueService) Get(ctx context.Context, id int64) (*Issue, error) {
	var i Issue
	if err := s.client.Get(ctx, fmt.Sprintf("/api/v1/issues/%d", id), nil, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create files a new issue.
func (s *IssueService) Create(ctx context.Context, i Issue) (*Issue, error) {
	var created Issue
	if err := s.client.Post(ctx, "/api/v1/issues", i, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces an issue's mutable fields.
func (s *IssueService) Update(ctx context.Context, i Issue) error {
	return s.client.Put(ctx, fmt.Sprintf("/api/v1/issues/%d", i.ID), i, nil)
}

// Delete removes an issue.
func (s *IssueService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/v1/issues/%d", id))
}

// ReviewService covers code-review CRUD.
type ReviewService struct{ client *Client }

// NewReviewService creates a [ReviewService] over client.
func NewReviewService(client *Client) *ReviewService { return &ReviewService{client: client} }

// List returns one page of reviews.
func (s *ReviewService) List(ctx context.Context, opts ListOptions) ([]Review, PageMeta, error) {
	var items []Review
	meta, err := s.client.GetPage(ctx, "/api/v1/reviews", opts.query(), &items)
	return items, meta, err
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, id int64) (*Review, error) {
	var r Review
	if err := s.client.Get(ctx, fmt.Sprintf("/api/v1/reviews/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create opens a new review.
func (s *ReviewService) Create(ctx context.Context, r Review) (*Review, error) {
	var created Review
	if err := s.client.Post(ctx, "/api/v1/reviews", r, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a review's mutable fields.
func (s *ReviewService) Update(ctx context.Context, r Review) error {
	return s.client.Put(ctx, fmt.Sprintf("/api/v1/reviews/%d", r.ID), r, nil)
}

// UserService covers user management.
type UserService struct{ client *Client }

// NewUserService creates a [UserService] over client.
func NewUserService(client *Client) *UserService { return &UserService{client: client} }

// List returns one page of accounts.
func (s *UserService) List(ctx context.Context, opts ListOptions) ([]Account, PageMeta, error) {
	var items []Account
	meta, err := s.client.GetPage(ctx, "/api/v1/users", opts.query(), &items)
	return items, meta, err
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id int64) (*Account, error) {
	var a Account
	if err := s.client.Get(ctx, fmt.Sprintf("/api/v1/users/%d", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create registers a new account.
func (s *UserService) Create(ctx context.Context, a Account) (*Account, error) {
	var created Account
	if err := s.client.Post(ctx, "/api/v1/users", a, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces an account's mutable fields.
func (s *UserService) Update(ctx context.Context, a Account) error {
	return s.client.Put(ctx, fmt.Sprintf("/api/v1/users/%d", a.ID), a, nil)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/v1/users/%d", id))
}

// NoticeService covers the notification center's REST surface.
type NoticeService struct{ client *Client }

// NewNoticeService creates a [NoticeService] over client.
func NewNoticeService(client *Client) *NoticeService { return &NoticeService{client: client} }

// List returns one page of notices.
func (s *NoticeService) List(ctx context.Context, opts ListOptions) ([]Notice, PageMeta, error) {
	var items []Notice
	meta, err := s.client.GetPage(ctx, "/api/v1/notifications", opts.query(), &items)
	return items, meta, err
}

// MarkRead marks one notice as read.
func (s *NoticeService) MarkRead(ctx context.Context, id int64) error {
	return s.client.Put(ctx, fmt.Sprintf("/api/v1/notifications/%d/read", id), nil, nil)
}

// MarkAllRead marks every notice as read.
func (s *NoticeService) MarkAllRead(ctx context.Context) error {
	return s.client.Put(ctx, "/api/v1/notifications/read-all", nil, nil)
}
