// internal/store/tables.go
//
// Table bindings for each resource.  Column lists match the db tags in
// internal/model; update both together.
package store

import "github.com/ispora/ispora-api/internal/model"

// Table names.
const (
	BlogPostsTable          = "blog_posts"
	EventsTable             = "events"
	ContactSubmissionsTable = "contact_submissions"
	PartnerSubmissionsTable = "partner_submissions"
	JoinRequestsTable       = "join_requests"
	RegistrationsTable      = "registrations"
	VisitsTable             = "visits"
)

// BlogPosts binds blog_posts.
func BlogPosts(db Queryer) Table[model.BlogPost] {
	return NewTable[model.BlogPost](db, BlogPostsTable, true,
		"id", "title", "slug", "content", "excerpt", "author", "cover_image_url",
		"status", "published_at", "created_at", "updated_at")
}

// Events binds events.
func Events(db Queryer) Table[model.Event] {
	return NewTable[model.Event](db, EventsTable, true,
		"id", "title", "description", "location", "start_at", "end_at",
		"cover_image_url", "registration_url", "status", "created_at", "updated_at")
}

// ContactSubmissions binds contact_submissions.
func ContactSubmissions(db Queryer) Table[model.ContactSubmission] {
	return NewTable[model.ContactSubmission](db, ContactSubmissionsTable, true,
		"id", "name", "email", "subject", "message", "status", "admin_notes",
		"created_at", "updated_at")
}

// PartnerSubmissions binds partner_submissions.
func PartnerSubmissions(db Queryer) Table[model.PartnerSubmission] {
	return NewTable[model.PartnerSubmission](db, PartnerSubmissionsTable, true,
		"id", "organization_name", "contact_name", "email", "phone", "website",
		"partnership_type", "message", "status", "admin_notes", "created_at", "updated_at")
}

// JoinRequests binds join_requests.
func JoinRequests(db Queryer) Table[model.JoinRequest] {
	return NewTable[model.JoinRequest](db, JoinRequestsTable, true,
		"id", "name", "email", "phone", "country", "interest", "message", "status",
		"admin_notes", "created_at", "updated_at")
}

// Registrations binds registrations.
func Registrations(db Queryer) Table[model.Registration] {
	return NewTable[model.Registration](db, RegistrationsTable, true,
		"id", "full_name", "email", "phone", "profession", "group", "status",
		"location", "created_at", "updated_at")
}

// Visits binds visits.  Visits are never updated, so updated_at is absent.
func Visits(db Queryer) Table[model.Visit] {
	return NewTable[model.Visit](db, VisitsTable, false,
		"id", "page", "referrer", "user_agent", "browser", "os", "device",
		"is_bot", "country", "city", "created_at")
}
