package blog

import (
	"time"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/security"
	"github.com/ispora/ispora-api/internal/slug"
)

// Field limits.
const (
	titleMax   = 200
	excerptMax = 500
	authorMax  = 100
	urlMax     = 1000
)

var requiredFields = []string{"title", "content"}

// ruleError is a 400 with a message and optional details.
type ruleError struct {
	msg     string
	details any
}

func (e *ruleError) Error() string { return e.msg }

// publishTime decides what to write to published_at.
//
// An explicit timestamp always wins.  Otherwise a post that is (or
// becomes) published without a stored published_at gets now.  An explicit
// null on a post that is not published clears the column.  set=false
// leaves the column alone.
func publishTime(status string, supplied *time.Time, explicitNull bool, stored *time.Time, now time.Time) (value any, set bool) {
	switch {
	case supplied != nil:
		return *supplied, true
	case status == model.StatusPublished && stored == nil:
		return now, true
	case explicitNull && status != model.StatusPublished:
		return nil, true
	}
	return nil, false
}

// optionalURL validates an optional http(s) URL field.
func optionalURL(b api.Body, key string) (any, error) {
	s := security.SanitizeString(b[key], urlMax)
	if s == "" {
		return nil, nil
	}
	if !security.IsValidURL(s) {
		return nil, &ruleError{msg: "Invalid " + key}
	}
	return s, nil
}

func optionalText(b api.Body, key string, max int) any {
	s := security.SanitizeString(b[key], max)
	if s == "" {
		return nil
	}
	return s
}

func status(b api.Body) (string, error) {
	s := security.SanitizeString(b["status"], 20)
	if !model.OneOf(s, model.PublicationStatuses) {
		return "", &ruleError{msg: "Invalid status", details: map[string]any{"allowed": model.PublicationStatuses}}
	}
	return s, nil
}

// createValues turns a create body into column values.
func createValues(b api.Body, now time.Time) (map[string]any, error) {
	if v := security.ValidateRequired(b, requiredFields); !v.Valid {
		return nil, &ruleError{msg: "Missing required fields", details: v.Missing}
	}

	st := model.StatusDraft
	if b.Present("status") {
		var err error
		if st, err = status(b); err != nil {
			return nil, err
		}
	}

	title := security.SanitizeString(b["title"], titleMax)
	s := slug.Make(title)
	if given := security.SanitizeString(b["slug"], slug.MaxLength); given != "" {
		s = slug.Make(given)
	}

	cover, err := optionalURL(b, "cover_image_url")
	if err != nil {
		return nil, err
	}
	supplied, err := b.Time("published_at")
	if err != nil {
		return nil, &ruleError{msg: err.Error()}
	}
	pa, _ := publishTime(st, supplied, false, nil, now)

	values := map[string]any{
		"title":           title,
		"slug":            s,
		"content":         security.SanitizeRichTextHTML(b["content"], security.DefaultRichTextMaxLength),
		"excerpt":         optionalText(b, "excerpt", excerptMax),
		"author":          optionalText(b, "author", authorMax),
		"cover_image_url": cover,
		"status":          st,
		"published_at":    pa,
	}
	// Markup-only input sanitizes to nothing.
	if v := security.ValidateRequired(values, requiredFields); !v.Valid {
		return nil, &ruleError{msg: "Missing required fields", details: v.Missing}
	}
	return values, nil
}

// updateValues turns an update body into a SET map against the stored
// row.  Only fields present in the body change.
func updateValues(b api.Body, cur *model.BlogPost, now time.Time) (map[string]any, error) {
	set := map[string]any{}

	if b.Has("title") {
		title := security.SanitizeString(b["title"], titleMax)
		if title == "" {
			return nil, &ruleError{msg: "title cannot be empty"}
		}
		set["title"] = title
	}
	if b.Has("content") {
		content := security.SanitizeRichTextHTML(b["content"], security.DefaultRichTextMaxLength)
		if content == "" {
			return nil, &ruleError{msg: "content cannot be empty"}
		}
		set["content"] = content
	}
	if b.Has("slug") {
		given := security.SanitizeString(b["slug"], slug.MaxLength)
		if given == "" {
			return nil, &ruleError{msg: "slug cannot be empty"}
		}
		set["slug"] = slug.Make(given)
	}
	if b.Has("excerpt") {
		set["excerpt"] = optionalText(b, "excerpt", excerptMax)
	}
	if b.Has("author") {
		set["author"] = optionalText(b, "author", authorMax)
	}
	if b.Has("cover_image_url") {
		cover, err := optionalURL(b, "cover_image_url")
		if err != nil {
			return nil, err
		}
		set["cover_image_url"] = cover
	}

	st := cur.Status
	if b.Present("status") {
		var err error
		if st, err = status(b); err != nil {
			return nil, err
		}
		set["status"] = st
	}

	supplied, err := b.Time("published_at")
	if err != nil {
		return nil, &ruleError{msg: err.Error()}
	}
	explicitNull := b.Has("published_at") && supplied == nil
	if v, ok := publishTime(st, supplied, explicitNull, cur.PublishedAt, now); ok {
		set["published_at"] = v
	}

	if len(set) == 0 {
		return nil, &ruleError{msg: "No updatable fields supplied"}
	}
	return set, nil
}
