package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/core/repository/memory"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	"github.com/duynhne/yoga-service/internal/security"
	"github.com/duynhne/yoga-service/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	auth     *logicv1.AuthService
	sessions *memory.SessionRepository
	users    *memory.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	teachers := memory.TeacherRepository{1: {ID: 1, FirstName: "Margot", LastName: "DELAHAYE"}}
	tokens := security.NewTokenService("handler-test-secret", time.Hour)

	auth := logicv1.NewAuthService(users, tokens).WithHashCost(bcrypt.MinCost)
	userService := logicv1.NewUserService(users)

	r := gin.New()
	api := r.Group("/api", middleware.Authentication(tokens, userService))
	NewHandler(auth, userService, logicv1.NewSessionService(sessions, users, teachers), logicv1.NewTeacherService(teachers)).RegisterRoutes(api)

	return &testServer{router: r, auth: auth, sessions: sessions, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers an account through the API and returns its login response.
func (s *testServer) signup(t *testing.T, email string) domain.AuthResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Email: email, FirstName: "John", LastName: "Doe", Password: "securePass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", email, w.Code, w.Body)
	}
	return s.login(t, email, "securePass123")
}

func (s *testServer) login(t *testing.T, email, password string) domain.AuthResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body)
	}
	var resp domain.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var m domain.MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("body %q: %v", w.Body, err)
	}
	return m.Message
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	resp := s.signup(t, "yogi@studio.com")
	if resp.Token == "" || resp.Type != "Bearer" || resp.Username != "yogi@studio.com" || resp.Admin {
		t.Fatalf("unexpected login response %+v", resp)
	}

	w := s.do(t, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Email: "yogi@studio.com", FirstName: "Jane", LastName: "Doe", Password: "another1",
	})
	if w.Code != http.StatusBadRequest || message(t, w) != "Error: Email is already taken!" {
		t.Fatalf("duplicate register: %d %s", w.Code, w.Body)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body domain.RegisterRequest
	}{
		{name: "bad email", body: domain.RegisterRequest{Email: "nope", FirstName: "John", LastName: "Doe", Password: "secret1"}},
		{name: "short password", body: domain.RegisterRequest{Email: "a@b.com", FirstName: "John", LastName: "Doe", Password: "123"}},
		{name: "short first name", body: domain.RegisterRequest{Email: "a@b.com", FirstName: "Jo", LastName: "Doe", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "yogi@studio.com")

	unknown := s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "ghost@studio.com", Password: "securePass123"})
	wrong := s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "yogi@studio.com", Password: "nope"})

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d / %d, want 401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", unknown.Body, wrong.Body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.sessions.Seed(1)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/session"},
		{name: "garbage token", method: http.MethodGet, path: "/api/session", token: "not-a-jwt"},
		{name: "participate", method: http.MethodPost, path: "/api/session/1/participate/1"},
		{name: "teacher", method: http.MethodGet, path: "/api/teacher/1", token: "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(t, tt.method, tt.path, tt.token, nil); w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}

	if got := s.sessions.RosterWrites(); got != 0 {
		t.Fatalf("roster writes = %d", got)
	}
}

func TestParticipationEndpoints(t *testing.T) {
	s := newTestServer(t)
	user := s.signup(t, "yogi@studio.com")
	other := s.signup(t, "other@studio.com")
	s.sessions.Seed(1)

	join := func(session, userID string, token string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/api/session/"+session+"/participate/"+userID, token, nil)
	}
	leave := func(session, userID string, token string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodDelete, "/api/session/"+session+"/participate/"+userID, token, nil)
	}
	id := func(r domain.AuthResponse) string { return jsonInt(r.ID) }

	if w := join("1", id(user), user.Token); w.Code != http.StatusOK {
		t.Fatalf("join: %d %s", w.Code, w.Body)
	}
	if got := s.sessions.Roster(1); len(got) != 1 || got[0] != user.ID {
		t.Fatalf("roster = %v", got)
	}

	steps := []struct {
		name string
		w    *httptest.ResponseRecorder
		want int
	}{
		{name: "join twice", w: join("1", id(user), user.Token), want: http.StatusBadRequest},
		{name: "join missing session", w: join("99", id(user), user.Token), want: http.StatusNotFound},
		{name: "join missing session for someone else", w: join("99", id(other), user.Token), want: http.StatusNotFound},
		{name: "join missing user", w: join("1", "9999", user.Token), want: http.StatusNotFound},
		{name: "join for someone else", w: join("1", id(other), user.Token), want: http.StatusUnauthorized},
		{name: "malformed session id", w: join("abc", id(user), user.Token), want: http.StatusBadRequest},
		{name: "malformed user id", w: join("1", "-3", user.Token), want: http.StatusBadRequest},
		{name: "leave missing session", w: leave("99", id(user), user.Token), want: http.StatusNotFound},
		{name: "leave missing session for someone else", w: leave("99", id(other), user.Token), want: http.StatusNotFound},
		{name: "leave not participating", w: leave("1", id(other), other.Token), want: http.StatusBadRequest},
	}
	for _, st := range steps {
		if st.w.Code != st.want {
			t.Errorf("%s: status = %d, want %d (%s)", st.name, st.w.Code, st.want, st.w.Body)
		}
	}

	if w := leave("1", id(user), user.Token); w.Code != http.StatusOK {
		t.Fatalf("leave: %d %s", w.Code, w.Body)
	}
	if got := s.sessions.Roster(1); len(got) != 0 {
		t.Fatalf("roster after leave = %v", got)
	}
	if w := leave("1", id(user), user.Token); w.Code != http.StatusBadRequest {
		t.Fatalf("second leave: %d", w.Code)
	}
	if got := s.sessions.RosterWrites(); got != 2 {
		t.Fatalf("roster writes = %d, want 2", got)
	}
}

func TestSessionAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.signup(t, "yogi@studio.com")
	if _, err := s.auth.EnsureAdmin(t.Context(), "admin@studio.com", "test!1234"); err != nil {
		t.Fatal(err)
	}
	admin := s.login(t, "admin@studio.com", "test!1234")

	body := map[string]any{
		"name":        "Evening flow",
		"date":        "2026-06-01T18:00:00Z",
		"teacher_id":  1,
		"description": "Slow flow before dinner",
	}

	if w := s.do(t, http.MethodPost, "/api/session", user.Token, body); w.Code != http.StatusUnauthorized {
		t.Fatalf("non-admin create: %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/session", admin.Token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("admin create: %d %s", w.Code, w.Body)
	}
	var created domain.Session
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Users == nil || len(created.Users) != 0 {
		t.Fatalf("created = %+v", created)
	}

	body["teacher_id"] = 42
	if w := s.do(t, http.MethodPut, "/api/session/"+jsonInt(created.ID), admin.Token, body); w.Code != http.StatusNotFound {
		t.Fatalf("update with unknown teacher: %d", w.Code)
	}
	body["teacher_id"] = 1
	body["name"] = "   "
	if w := s.do(t, http.MethodPost, "/api/session", admin.Token, body); w.Code != http.StatusBadRequest {
		t.Fatalf("create with blank name: %d", w.Code)
	}
	delete(body, "name")
	if w := s.do(t, http.MethodPost, "/api/session", admin.Token, body); w.Code != http.StatusBadRequest {
		t.Fatalf("create without name: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/session", user.Token, nil)
	var all []domain.Session
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil || len(all) != 1 {
		t.Fatalf("list: %d %s", w.Code, w.Body)
	}

	if w := s.do(t, http.MethodDelete, "/api/session/"+jsonInt(created.ID), admin.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/session/"+jsonInt(created.ID), user.Token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", w.Code)
	}
}

func TestUserAndTeacherRoutes(t *testing.T) {
	s := newTestServer(t)
	user := s.signup(t, "yogi@studio.com")
	other := s.signup(t, "other@studio.com")

	w := s.do(t, http.MethodGet, "/api/user/"+jsonInt(user.ID), other.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get user: %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("password leaked: %s", w.Body)
	}

	if w := s.do(t, http.MethodDelete, "/api/user/"+jsonInt(user.ID), other.Token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete other: %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/user/"+jsonInt(user.ID), user.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("delete self: %d", w.Code)
	}
	// The token outlives the account but no longer authenticates.
	if w := s.do(t, http.MethodGet, "/api/teacher", user.Token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account token: %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/teacher", other.Token, nil)
	var teachers []domain.Teacher
	if err := json.Unmarshal(w.Body.Bytes(), &teachers); err != nil || len(teachers) != 1 {
		t.Fatalf("teachers: %d %s", w.Code, w.Body)
	}
	if w := s.do(t, http.MethodGet, "/api/teacher/7", other.Token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing teacher: %d", w.Code)
	}
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
