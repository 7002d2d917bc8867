package events

import (
	"time"

	"github.com/ispora/ispora-api/internal/api"
	"github.com/ispora/ispora-api/internal/model"
	"github.com/ispora/ispora-api/internal/security"
)

const (
	titleMax    = 200
	locationMax = 300
	urlMax      = 1000
)

type ruleError struct {
	msg     string
	details any
}

func (e *ruleError) Error() string { return e.msg }

// effectiveStatus applies the auto-archive rule.  requested is the status
// sent in this request ("" when absent); fallback is what the row would
// otherwise have.
func effectiveStatus(requested, fallback string, start, now time.Time) string {
	if start.Before(now) && requested != model.StatusDraft {
		return model.StatusArchived
	}
	if requested != "" {
		return requested
	}
	return fallback
}

func checkRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return &ruleError{msg: "end_at must be on or after start_at"}
	}
	return nil
}

func requestedStatus(b api.Body) (string, error) {
	if !b.Present("status") {
		return "", nil
	}
	s := security.SanitizeString(b["status"], 20)
	if !model.OneOf(s, model.PublicationStatuses) {
		return "", &ruleError{msg: "Invalid status", details: map[string]any{"allowed": model.PublicationStatuses}}
	}
	return s, nil
}

func timeField(b api.Body, key string) (*time.Time, error) {
	t, err := b.Time(key)
	if err != nil {
		return nil, &ruleError{msg: err.Error()}
	}
	return t, nil
}

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

func optionalRich(b api.Body, key string) any {
	s := security.SanitizeRichTextHTML(b[key], security.DefaultRichTextMaxLength)
	if s == "" {
		return nil
	}
	return s
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// createValues turns a create body into column values.
func createValues(b api.Body, now time.Time) (map[string]any, error) {
	if v := security.ValidateRequired(b, []string{"title", "start_at"}); !v.Valid {
		return nil, &ruleError{msg: "Missing required fields", details: v.Missing}
	}
	start, err := timeField(b, "start_at")
	if err != nil {
		return nil, err
	}
	end, err := timeField(b, "end_at")
	if err != nil {
		return nil, err
	}
	if err := checkRange(*start, end); err != nil {
		return nil, err
	}
	requested, err := requestedStatus(b)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"title":       security.SanitizeString(b["title"], titleMax),
		"description": optionalRich(b, "description"),
		"location":    optionalText(b, "location", locationMax),
		"start_at":    *start,
		"end_at":      timeValue(end),
		"status":      effectiveStatus(requested, model.StatusDraft, *start, now),
	}
	if values["title"] == "" {
		return nil, &ruleError{msg: "Missing required fields", details: []string{"title"}}
	}
	for _, key := range []string{"cover_image_url", "registration_url"} {
		if values[key], err = optionalURL(b, key); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// updateValues merges the body with the stored row, validates the merged
// dates, and returns the SET map.
func updateValues(b api.Body, cur *model.Event, now time.Time) (map[string]any, error) {
	set := map[string]any{}

	if b.Has("title") {
		title := security.SanitizeString(b["title"], titleMax)
		if title == "" {
			return nil, &ruleError{msg: "title cannot be empty"}
		}
		set["title"] = title
	}
	if b.Has("description") {
		set["description"] = optionalRich(b, "description")
	}
	if b.Has("location") {
		set["location"] = optionalText(b, "location", locationMax)
	}
	for _, key := range []string{"cover_image_url", "registration_url"} {
		if !b.Has(key) {
			continue
		}
		v, err := optionalURL(b, key)
		if err != nil {
			return nil, err
		}
		set[key] = v
	}

	start := cur.StartAt
	if b.Present("start_at") {
		t, err := timeField(b, "start_at")
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, &ruleError{msg: "start_at cannot be empty"}
		}
		start = *t
		set["start_at"] = start
	} else if b.Has("start_at") {
		return nil, &ruleError{msg: "start_at cannot be empty"}
	}

	end := cur.EndAt
	if b.Has("end_at") {
		t, err := timeField(b, "end_at")
		if err != nil {
			return nil, err
		}
		end = t
		set["end_at"] = timeValue(t)
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	requested, err := requestedStatus(b)
	if err != nil {
		return nil, err
	}
	if st := effectiveStatus(requested, cur.Status, start, now); st != cur.Status || requested != "" {
		set["status"] = st
	}

	if len(set) == 0 {
		return nil, &ruleError{msg: "No updatable fields supplied"}
	}
	return set, nil
}
