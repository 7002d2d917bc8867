// internal/model/model.go
//
// Row models for the site tables.
//
// Context
// -------
// Each struct mirrors one row of a Supabase table and doubles as the JSON
// shape returned by the API.  The structs carry no behaviour beyond the
// status vocabularies; rules live in the components that own each
// resource.
//
// Schema reference (abridged)
//
//	blog_posts          (id uuid pk, title, slug unique, content, excerpt,
//	                     author, cover_image_url, status, published_at,
//	                     created_at, updated_at)
//	events              (id, title, description, location, start_at,
//	                     end_at, cover_image_url, registration_url, status,
//	                     created_at, updated_at)
//	contact_submissions (id, name, email, subject, message, status,
//	                     admin_notes, created_at, updated_at)
//	partner_submissions (id, organization_name, contact_name, email, phone,
//	                     website, partnership_type, message, status,
//	                     admin_notes, created_at, updated_at)
//	join_requests       (id, name, email, phone, country, interest,
//	                     message, status, admin_notes, created_at,
//	                     updated_at)
//	registrations       (id, full_name, email unique, phone, profession,
//	                     "group", status, location jsonb, created_at,
//	                     updated_at)
//	visits              (id, page, referrer, user_agent, browser, os,
//	                     device, is_bot, country, city, created_at)
//
// Notes
// -----
//   - Nullable columns are pointers; callers must nil-check.
//   - `group` is a reserved word, so the store quotes every identifier.
package model

import "time"

// Publication statuses shared by blog posts and events.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Contact submission statuses.
const (
	ContactNew      = "new"
	ContactRead     = "read"
	ContactReplied  = "replied"
	ContactArchived = "archived"
)

// Review statuses for partner submissions and join requests.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Registration statuses and groups.
const (
	RegistrationPending  = "pending"
	RegistrationVerified = "verified"
	RegistrationActive   = "active"

	GroupLocal    = "local"
	GroupDiaspora = "diaspora"
)

// Status vocabularies, in lifecycle order.
var (
	PublicationStatuses  = []string{StatusDraft, StatusPublished, StatusArchived}
	ContactStatuses      = []string{ContactNew, ContactRead, ContactReplied, ContactArchived}
	ReviewStatuses       = []string{ReviewPending, ReviewApproved, ReviewRejected}
	RegistrationStatuses = []string{RegistrationPending, RegistrationVerified, RegistrationActive}
	RegistrationGroups   = []string{GroupLocal, GroupDiaspora}
)

// BlogPost mirrors one row in blog_posts.
type BlogPost struct {
	ID            string     `db:"id"              json:"id"`
	Title         string     `db:"title"           json:"title"`
	Slug          string     `db:"slug"            json:"slug"`
	Content       string     `db:"content"         json:"content"`
	Excerpt       *string    `db:"excerpt"         json:"excerpt"`
	Author        *string    `db:"author"          json:"author"`
	CoverImageURL *string    `db:"cover_image_url" json:"cover_image_url"`
	Status        string     `db:"status"          json:"status"`
	PublishedAt   *time.Time `db:"published_at"    json:"published_at"`
	CreatedAt     time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"      json:"updated_at"`
}

// Event mirrors one row in events.
type Event struct {
	ID              string     `db:"id"               json:"id"`
	Title           string     `db:"title"            json:"title"`
	Description     *string    `db:"description"      json:"description"`
	Location        *string    `db:"location"         json:"location"`
	StartAt         time.Time  `db:"start_at"         json:"start_at"`
	EndAt           *time.Time `db:"end_at"           json:"end_at"`
	CoverImageURL   *string    `db:"cover_image_url"  json:"cover_image_url"`
	RegistrationURL *string    `db:"registration_url" json:"registration_url"`
	Status          string     `db:"status"           json:"status"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"       json:"updated_at"`
}

// ContactSubmission mirrors one row in contact_submissions.
type ContactSubmission struct {
	ID         string    `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	Email      string    `db:"email"       json:"email"`
	Subject    *string   `db:"subject"     json:"subject"`
	Message    string    `db:"message"     json:"message"`
	Status     string    `db:"status"      json:"status"`
	AdminNotes *string   `db:"admin_notes" json:"admin_notes"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// PartnerSubmission mirrors one row in partner_submissions.
type PartnerSubmission struct {
	ID               string    `db:"id"                json:"id"`
	OrganizationName string    `db:"organization_name" json:"organization_name"`
	ContactName      string    `db:"contact_name"      json:"contact_name"`
	Email            string    `db:"email"             json:"email"`
	Phone            *string   `db:"phone"             json:"phone"`
	Website          *string   `db:"website"           json:"website"`
	PartnershipType  *string   `db:"partnership_type"  json:"partnership_type"`
	Message          *string   `db:"message"           json:"message"`
	Status           string    `db:"status"            json:"status"`
	AdminNotes       *string   `db:"admin_notes"       json:"admin_notes"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"        json:"updated_at"`
}

// JoinRequest mirrors one row in join_requests.
type JoinRequest struct {
	ID         string    `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	Email      string    `db:"email"       json:"email"`
	Phone      *string   `db:"phone"       json:"phone"`
	Country    *string   `db:"country"     json:"country"`
	Interest   *string   `db:"interest"    json:"interest"`
	Message    *string   `db:"message"     json:"message"`
	Status     string    `db:"status"      json:"status"`
	AdminNotes *string   `db:"admin_notes" json:"admin_notes"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// Registration mirrors one row in registrations.
type Registration struct {
	ID         string    `db:"id"         json:"id"`
	FullName   string    `db:"full_name"  json:"full_name"`
	Email      string    `db:"email"      json:"email"`
	Phone      *string   `db:"phone"      json:"phone"`
	Profession *string   `db:"profession" json:"profession"`
	Group      string    `db:"group"      json:"group"`
	Status     string    `db:"status"     json:"status"`
	Location   JSONMap   `db:"location"   json:"location"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Visit mirrors one row in visits.  Rows are append-only.
type Visit struct {
	ID        string    `db:"id"         json:"id"`
	Page      string    `db:"page"       json:"page"`
	Referrer  *string   `db:"referrer"   json:"referrer"`
	UserAgent *string   `db:"user_agent" json:"user_agent"`
	Browser   *string   `db:"browser"    json:"browser"`
	OS        *string   `db:"os"         json:"os"`
	Device    *string   `db:"device"     json:"device"`
	IsBot     bool      `db:"is_bot"     json:"is_bot"`
	Country   *string   `db:"country"    json:"country"`
	City      *string   `db:"city"       json:"city"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OneOf reports whether s is in set.
func OneOf(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
