package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/groovemind/djbooth/internal/database"
	"github.com/groovemind/djbooth/internal/models"
)

// fakeProfileRepo is a mock implementation of ProfileRepositoryInterface
type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.DJProfile
	active   uuid.UUID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.DJProfile)}
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.DJProfile, error) {
	return f.profiles[id], nil
}

func (f *fakeProfileRepo) GetActive(context.Context) (*models.DJProfile, error) {
	return f.profiles[f.active], nil
}

func (f *fakeProfileRepo) List(context.Context) ([]*models.DJProfile, error) {
	out := make([]*models.DJProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile *models.DJProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) Activate(_ context.Context, id uuid.UUID) error {
	p, ok := f.profiles[id]
	if !ok {
		return context.Canceled // any error will do for the handler
	}
	for _, other := range f.profiles {
		other.Active = false
	}
	p.Active = true
	f.active = id
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.profiles, id)
	return nil
}

var _ database.ProfileRepositoryInterface = (*fakeProfileRepo)(nil)

func newProfileRouter(repo database.ProfileRepositoryInterface) *mux.Router {
	r := mux.NewRouter()
	NewProfileHandler(repo).RegisterRoutes(r)
	return r
}

func TestUpsertProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()

	w := httptest.NewRecorder()
	newProfileRouter(repo).ServeHTTP(w, newTestRequest("POST", "/profiles", map[string]any{
		"name":        "Night Owl",
		"personality": "a mellow late-night host",
		"voice_id":    "v-42",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if len(repo.profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(repo.profiles))
	}
	for _, p := range repo.profiles {
		if p.Name != "Night Owl" || p.VoiceID != "v-42" {
			t.Errorf("stored profile: %+v", p)
		}
	}
}

func TestUpsertProfile_MissingPersonality(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()

	w := httptest.NewRecorder()
	newProfileRouter(repo).ServeHTTP(w, newTestRequest("POST", "/profiles", map[string]any{
		"name": "Night Owl",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if len(repo.profiles) != 0 {
		t.Error("invalid profile must not be stored")
	}
}

func TestActivateProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()
	id := uuid.New()
	repo.profiles[id] = &models.DJProfile{ID: id, Name: "Night Owl", Personality: "mellow"}

	w := httptest.NewRecorder()
	newProfileRouter(repo).ServeHTTP(w, httptest.NewRequest("POST", "/profiles/"+id.String()+"/activate", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !repo.profiles[id].Active {
		t.Error("profile was not activated")
	}
}

func TestActivateProfile_BadID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newProfileRouter(newFakeProfileRepo()).ServeHTTP(w, httptest.NewRequest("POST", "/profiles/not-a-uuid/activate", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetActiveProfile_NoneActive(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	newProfileRouter(newFakeProfileRepo()).ServeHTTP(w, httptest.NewRequest("GET", "/profiles/active", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteProfile(t *testing.T) {
	t.Parallel()

	repo := newFakeProfileRepo()
	id := uuid.New()
	repo.profiles[id] = &models.DJProfile{ID: id, Name: "Night Owl", Personality: "mellow"}

	w := httptest.NewRecorder()
	newProfileRouter(repo).ServeHTTP(w, httptest.NewRequest("DELETE", "/profiles/"+id.String(), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["status"] != "deleted" {
		t.Errorf("unexpected body: %v", body.Data)
	}
	if len(repo.profiles) != 0 {
		t.Error("profile was not deleted")
	}
}
