package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

type memoryService struct {
	doctors   []domain.Doctor
	searchErr error
	deleteErr error
}

func (m *memoryService) GetDoctor(_ context.Context, id string) (*domain.Doctor, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	for _, d := range m.doctors {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, domain.ErrDoctorNotFound
}

func (m *memoryService) SearchDoctors(_ context.Context, query string) ([]domain.Doctor, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []domain.Doctor
	for _, d := range m.doctors {
		if matchesQuery(d, query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryService) DeleteDoctor(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, d := range m.doctors {
		if d.ID == id {
			m.doctors = append(m.doctors[:i:i], m.doctors[i+1:]...)
			return nil
		}
	}
	return domain.ErrDoctorNotFound
}

func doctors(n int) []domain.Doctor {
	out := make([]domain.Doctor, n)
	for i := range out {
		out[i] = domain.Doctor{
			ID:     fmt.Sprintf("d%02d", i+1),
			User:   domain.DoctorUser{FirstName: "Doc", LastName: fmt.Sprintf("N%02d", i+1)},
			Rating: 4,
		}
	}
	return out
}

func newEngine(svc DoctorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(Templates())
	NewHandler(svc, 8).Register(r, func(c *gin.Context) { c.Next() })
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestProfilePage(t *testing.T) {
	svc := &memoryService{doctors: []domain.Doctor{{
		ID:              "d1",
		User:            domain.DoctorUser{FirstName: "James", LastName: "Wilson"},
		Rating:          4.7,
		Specializations: []string{"Oncology"},
		Education:       []string{"MD, McGill"},
		Phone:           "+1 555 0199",
	}}}
	r := newEngine(svc)

	w := get(r, "/patient/features/health-connect/doctor/d1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "James Wilson")
	assert.Contains(t, body, "4.7 Rating")
	assert.Contains(t, body, "Oncology")
	assert.Contains(t, body, "MD, McGill")
	assert.Contains(t, body, `href="/chat"`)
	assert.Contains(t, body, `href="/patient/features/health-calendar"`)
	assert.NotContains(t, body, "Doctor not found")
}

func TestProfilePageNotFound(t *testing.T) {
	r := newEngine(&memoryService{})

	for _, id := range []string{"missing", "broken"} {
		w := get(r, "/patient/features/health-connect/doctor/"+id)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Doctor not found")
	}
}

func TestDirectoryPagePagination(t *testing.T) {
	r := newEngine(&memoryService{doctors: doctors(17)})

	w := get(r, DirectoryPath)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "doctor-d01")
	assert.Contains(t, body, "doctor-d08")
	assert.NotContains(t, body, "doctor-d09")
	assert.Contains(t, body, `<span class="prev disabled">`)
	assert.Contains(t, body, `class="next" href="/admin/features/manage-doctors?page=2"`)

	w = get(r, DirectoryPath+"?page=4")
	body = w.Body.String()
	assert.Contains(t, body, "doctor-d17")
	assert.Contains(t, body, `<span class="page active">3</span>`)
	assert.Contains(t, body, `<span class="next disabled">`)
}

func TestDirectoryPageSingleFullPage(t *testing.T) {
	r := newEngine(&memoryService{doctors: doctors(8)})

	body := get(r, DirectoryPath+"?q=").Body.String()
	assert.Equal(t, 8, strings.Count(body, `class="doctor-card"`))
	assert.Contains(t, body, `<span class="prev disabled">`)
	assert.Contains(t, body, `<span class="next disabled">`)
}

func TestDirectoryPageEmptyState(t *testing.T) {
	r := newEngine(&memoryService{searchErr: errors.New("db down")})

	w := get(r, DirectoryPath+"?q=house")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No doctors found")
	assert.Contains(t, w.Body.String(), `value="house"`)
}

func TestDirectoryDelete(t *testing.T) {
	svc := &memoryService{doctors: doctors(3)}
	r := newEngine(svc)

	form := url.Values{"q": {"Doc"}, "page": {"1"}}
	req := httptest.NewRequest(http.MethodPost, DirectoryPath+"/d02/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, DirectoryPath+"?notice=removed&q=Doc", w.Header().Get("Location"))
	assert.Len(t, svc.doctors, 2)

	body := get(r, w.Header().Get("Location")).Body.String()
	assert.Contains(t, body, "Doctor removed successfully")
	assert.NotContains(t, body, "doctor-d02")
}

func TestDirectoryDeleteFailure(t *testing.T) {
	svc := &memoryService{doctors: doctors(3), deleteErr: errors.New("500")}
	r := newEngine(svc)

	req := httptest.NewRequest(http.MethodPost, DirectoryPath+"/d02/delete", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, DirectoryPath+"?notice=failed", w.Header().Get("Location"))
	assert.Len(t, svc.doctors, 3)

	body := get(r, w.Header().Get("Location")).Body.String()
	assert.Contains(t, body, "Failed to remove doctor")
}

func TestDirectoryPageRejectsBadQuery(t *testing.T) {
	r := newEngine(&memoryService{doctors: doctors(3)})

	for _, target := range []string{
		DirectoryPath + "?page=abc",
		DirectoryPath + "?page=-1",
		DirectoryPath + "?notice=hacked",
		DirectoryPath + "?q=" + strings.Repeat("a", 257),
	} {
		assert.Equal(t, http.StatusBadRequest, get(r, target).Code, target)
	}

	// An omitted or zero page is page 1.
	assert.Contains(t, get(r, DirectoryPath+"?page=0").Body.String(), `<span class="page active">1</span>`)
}

func TestDirectoryDeleteRejectsBadForm(t *testing.T) {
	svc := &memoryService{doctors: doctors(3)}
	r := newEngine(svc)

	form := url.Values{"page": {"two"}}
	req := httptest.NewRequest(http.MethodPost, DirectoryPath+"/d02/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.doctors, 3)
}

func TestProfilePageRejectsOverlongID(t *testing.T) {
	r := newEngine(&memoryService{})
	w := get(r, "/patient/features/health-connect/doctor/"+strings.Repeat("x", 129))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Doctor not found")
}

// matchesQuery mirrors the repository search: case-insensitive substring over
// ID, username, names, languages and specializations.
func matchesQuery(d domain.Doctor, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{d.ID, d.User.Username, d.User.FirstName, d.User.LastName, d.Languages, d.DisplayName()}
	fields = append(fields, d.Specializations...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
