package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/cache"
	"github.com/patrickassako/triomphe-immobilier/models"
	"github.com/patrickassako/triomphe-immobilier/services"
	"github.com/patrickassako/triomphe-immobilier/storage"
)

type stubPropertyStore struct {
	properties []models.Property
	total      int
	lastFilter storage.PropertyFilter
}

func (f *stubPropertyStore) SearchProperties(ctx context.Context, filter storage.PropertyFilter) ([]models.Property, error) {
	f.lastFilter = filter
	return f.properties, nil
}

func (f *stubPropertyStore) CountProperties(ctx context.Context, _ storage.PropertyFilter) (int, error) {
	return f.total, nil
}

func (f *stubPropertyStore) FeaturedProperties(ctx context.Context, limit int) ([]models.Property, error) {
	return f.properties, nil
}

func (f *stubPropertyStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	for i := range f.properties {
		if f.properties[i].ID == id {
			return &f.properties[i], nil
		}
	}
	return nil, nil
}

func (f *stubPropertyStore) GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	for i := range f.properties {
		if f.properties[i].Slug == slug {
			return &f.properties[i], nil
		}
	}
	return nil, nil
}

func (f *stubPropertyStore) CreateProperty(ctx context.Context, p *models.Property) error {
	f.properties = append(f.properties, *p)
	return nil
}

func (f *stubPropertyStore) UpdateProperty(ctx context.Context, p *models.Property) error { return nil }
func (f *stubPropertyStore) DeleteProperty(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *stubPropertyStore) IncrementViews(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *stubPropertyStore) ReplaceImages(ctx context.Context, _ uuid.UUID, _ []models.ImageInput) error {
	return nil
}
func (f *stubPropertyStore) ReplaceFeatures(ctx context.Context, _ uuid.UUID, _ []uuid.UUID) error {
	return nil
}

type stubFavoriteStore struct {
	favorites map[string]*models.Favorite
	shares    int
}

func (f *stubFavoriteStore) CountFavorites(ctx context.Context, propertyID uuid.UUID) (int, error) {
	return len(f.favorites), nil
}

func (f *stubFavoriteStore) GetFavorite(ctx context.Context, userID, propertyID uuid.UUID) (*models.Favorite, error) {
	return f.favorites[userID.String()], nil
}

func (f *stubFavoriteStore) InsertFavorite(ctx context.Context, fav *models.Favorite) error {
	f.favorites[fav.UserID.String()] = fav
	return nil
}

func (f *stubFavoriteStore) DeleteFavorite(ctx context.Context, userID, propertyID uuid.UUID) error {
	delete(f.favorites, userID.String())
	return nil
}

func (f *stubFavoriteStore) GetShares(ctx context.Context, propertyID uuid.UUID) (int, error) {
	return f.shares, nil
}

func (f *stubFavoriteStore) IncrementShares(ctx context.Context, propertyID uuid.UUID) (int, error) {
	f.shares++
	return f.shares, nil
}

type stubContactStore struct {
	inserted *models.Contact
}

func (f *stubContactStore) InsertContact(ctx context.Context, c *models.Contact) error {
	f.inserted = c
	return nil
}

func (f *stubContactStore) ListContacts(ctx context.Context, _ storage.ContactFilter) ([]models.Contact, error) {
	return nil, nil
}

func (f *stubContactStore) CountContacts(ctx context.Context, _ storage.ContactFilter) (int, error) {
	return 0, nil
}

func (f *stubContactStore) GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return nil, nil
}

func (f *stubContactStore) UpdateContact(ctx context.Context, c *models.Contact) error { return nil }
func (f *stubContactStore) DeleteContact(ctx context.Context, id uuid.UUID) error      { return nil }
func (f *stubContactStore) ContactStatusCounts(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}
func (f *stubContactStore) CountContactsSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

type testEnv struct {
	handler  http.Handler
	props    *stubPropertyStore
	favs     *stubFavoriteStore
	contacts *stubContactStore
	sharesOn bool
}

func newTestEnv(t *testing.T, sharesOn bool) *testEnv {
	t.Helper()
	env := &testEnv{
		props:    &stubPropertyStore{},
		favs:     &stubFavoriteStore{favorites: map[string]*models.Favorite{}},
		contacts: &stubContactStore{},
		sharesOn: sharesOn,
	}
	listings := services.NewListingService(env.props,
		cache.NewTTL(time.Minute, nil), cache.NewStaleTTL(time.Minute, nil), nil)
	srv := New(
		listings,
		services.NewFavoriteService(env.favs, sharesOn),
		services.NewContactService(env.contacts, nil),
		nil, nil, nil, nil, nil,
	)
	env.handler = srv.Router()
	return env
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rr.Body.String())
	}
	return body
}

func TestSearchEnvelope(t *testing.T) {
	env := newTestEnv(t, false)
	env.props.properties = []models.Property{{ID: uuid.New(), Title: "Villa"}}
	env.props.total = 25

	rr := do(t, env.handler, http.MethodGet, "/api/properties?search=villa&page=2&limit=12", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	body := decodeBody(t, rr)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	if body["total"] != float64(25) || body["page"] != float64(2) || body["totalPages"] != float64(3) {
		t.Fatalf("envelope = %v", body)
	}
	if env.props.lastFilter.Search != "villa" || env.props.lastFilter.Page != 2 {
		t.Fatalf("filter = %+v", env.props.lastFilter)
	}
}

func TestSearchIgnoresMalformedNumbers(t *testing.T) {
	env := newTestEnv(t, false)
	rr := do(t, env.handler, http.MethodGet, "/api/properties?min_price=abc&page=xyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if env.props.lastFilter.MinPrice != 0 || env.props.lastFilter.Page != 1 {
		t.Fatalf("filter = %+v", env.props.lastFilter)
	}
}

func TestGetPropertyNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	rr := do(t, env.handler, http.MethodGet, "/api/properties/"+uuid.NewString(), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false || body["error"] == "" {
		t.Fatalf("body = %v", body)
	}
}

func TestGetPropertyBadID(t *testing.T) {
	env := newTestEnv(t, false)
	rr := do(t, env.handler, http.MethodGet, "/api/properties/pas-un-uuid", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSubmitContactValidation(t *testing.T) {
	env := newTestEnv(t, false)

	rr := do(t, env.handler, http.MethodPost, "/api/contacts", `{"email":"x","message":"court"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, ", ") {
		t.Fatalf("errors not joined: %q", msg)
	}
	if env.contacts.inserted != nil {
		t.Fatal("invalid contact must not be stored")
	}
}

func TestSubmitContactSuccess(t *testing.T) {
	env := newTestEnv(t, false)

	payload := `{"first_name":"Jean","last_name":"Mbarga","email":"jean@example.com","message":"Je suis intéressé par cette villa."}`
	rr := do(t, env.handler, http.MethodPost, "/api/contacts", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if env.contacts.inserted == nil || env.contacts.inserted.Status != models.ContactStatusNew {
		t.Fatalf("stored = %+v", env.contacts.inserted)
	}
}

func TestSubmitContactLegacySpellings(t *testing.T) {
	env := newTestEnv(t, false)

	payload := `{"firstName":"Jean","lastName":"Mbarga","email":"jean@example.com","message":"Je suis intéressé par cette villa."}`
	rr := do(t, env.handler, http.MethodPost, "/api/contacts", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if env.contacts.inserted == nil || env.contacts.inserted.FirstName != "Jean" {
		t.Fatalf("stored = %+v", env.contacts.inserted)
	}
}

func TestToggleLikeRequiresUser(t *testing.T) {
	env := newTestEnv(t, false)
	id := uuid.NewString()

	rr := do(t, env.handler, http.MethodPost, "/api/properties/"+id+"/likes", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/properties/"+id+"/likes", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["action"] != "liked" || body["likes"] != float64(1) {
		t.Fatalf("body = %v", body)
	}
}

func TestToggleLikeUserInBody(t *testing.T) {
	env := newTestEnv(t, false)
	id := uuid.NewString()
	user := uuid.NewString()

	rr := do(t, env.handler, http.MethodPost, "/api/properties/"+id+"/likes",
		`{"user_id":"`+user+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["action"] != "liked" {
		t.Fatalf("body = %v", body)
	}

	rr = do(t, env.handler, http.MethodPost, "/api/properties/"+id+"/likes",
		`{"user_id":"`+user+`"}`)
	if body := decodeBody(t, rr); body["action"] != "unliked" || body["likes"] != float64(0) {
		t.Fatalf("second toggle body = %v", body)
	}
}

func TestToggleLikeCheckOnly(t *testing.T) {
	env := newTestEnv(t, false)
	id := uuid.NewString()
	user := uuid.NewString()

	rr := do(t, env.handler, http.MethodPost, "/api/properties/"+id+"/likes",
		`{"user_id":"`+user+`","check_only":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["is_liked"] != false {
		t.Fatalf("body = %v", body)
	}
	if _, present := body["action"]; present {
		t.Fatal("check_only must not toggle")
	}
	if len(env.favs.favorites) != 0 {
		t.Fatal("check_only must not insert a favorite")
	}
}

func TestGetLikesAnonymous(t *testing.T) {
	env := newTestEnv(t, false)

	rr := do(t, env.handler, http.MethodGet, "/api/properties/"+uuid.NewString()+"/likes", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["likes"] != float64(0) {
		t.Fatalf("body = %v", body)
	}
	if _, present := body["is_liked"]; present {
		t.Fatal("is_liked must be absent without a user")
	}
}

func TestLegacySingleFetchOnListRoute(t *testing.T) {
	env := newTestEnv(t, false)
	id := uuid.New()
	env.props.properties = []models.Property{{ID: id, Title: "Villa", Slug: "villa"}}

	rr := do(t, env.handler, http.MethodGet, "/api/properties?id="+id.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	if data["title"] != "Villa" {
		t.Fatalf("data = %v", data)
	}
}

func TestSharesCapabilityOff(t *testing.T) {
	env := newTestEnv(t, false)

	rr := do(t, env.handler, http.MethodGet, "/api/properties/"+uuid.NewString()+"/shares", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["shares_supported"] != false || body["shares"] != float64(0) {
		t.Fatalf("body = %v", body)
	}
}

func TestSharesCapabilityOn(t *testing.T) {
	env := newTestEnv(t, true)
	id := uuid.NewString()

	rr := do(t, env.handler, http.MethodPost, "/api/properties/"+id+"/shares", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["shares_supported"] != true || body["shares"] != float64(1) {
		t.Fatalf("body = %v", body)
	}
}

func TestCreatePropertyLegacyBody(t *testing.T) {
	env := newTestEnv(t, false)

	payload := `{"property":{"title":"Villa moderne","price":50000},"images":[{"url":"https://cdn/img.jpg"}]}`
	rr := do(t, env.handler, http.MethodPost, "/api/properties", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	if data["slug"] != "villa-moderne" {
		t.Fatalf("slug = %v", data["slug"])
	}
}
