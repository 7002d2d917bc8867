package joinrequests

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/ispora/ispora-api/internal/component/componenttest"
)

const id = "9d2b7c1e-4a3f-4e6b-a1c2-7f8e9d0a1b2c"

var cols = []string{"id", "name", "email", "phone", "country", "interest", "message",
	"status", "admin_notes", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	d, mock := componenttest.Deps(t)
	h := componenttest.Mount(t, &Comp{}, d)
	now := componenttest.Now

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "join_requests" ("country", "email", "interest", "message", "name", "phone", "status")`)).
		WithArgs("Kenya", "amara@example.com", "mentoring", nil, "Amara", nil, "pending").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id, "Amara", "amara@example.com", nil, "Kenya",
			"mentoring", nil, "pending", nil, now, now))

	rec := componenttest.Do(h, http.MethodPost, "/", map[string]any{
		"name": "Amara", "email": "amara@example.com", "country": "Kenya", "interest": "mentoring",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, componenttest.JSON(t, rec), "join_request")
}

func TestCreateDatabaseError(t *testing.T) {
	d, mock := componenttest.Deps(t)
	h := componenttest.Mount(t, &Comp{}, d)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "join_requests"`)).
		WillReturnError(errors.New("connection reset by peer"))

	rec := componenttest.Do(h, http.MethodPost, "/", map[string]any{"name": "Amara", "email": "amara@example.com"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "check server logs for [join-requests]", componenttest.JSON(t, rec)["hint"])
}

func TestPatchStatus(t *testing.T) {
	d, mock := componenttest.Deps(t)
	h := componenttest.Mount(t, &Comp{}, d)
	now := componenttest.Now

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "join_requests" SET "status" = $1, "updated_at" = now() WHERE "id" = $2`)).
		WithArgs("approved", id).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id, "Amara", "amara@example.com", nil, nil,
			nil, nil, "approved", nil, now, now))

	rec := componenttest.Do(h, http.MethodPatch, "/"+id, map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
