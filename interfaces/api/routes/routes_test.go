package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"task-api/application/serviceimpl"
	"task-api/domain/access"
	"task-api/infrastructure/memory"
	"task-api/infrastructure/messaging"
	"task-api/infrastructure/storage"
	"task-api/infrastructure/websocket"
	"task-api/interfaces/api/handlers"
	"task-api/interfaces/api/middleware"
	"task-api/pkg/config"
	"task-api/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type taskBody struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
	Checked     bool    `json:"checked"`
	Owner       string  `json:"owner"`
}

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T, mode access.Mode, denyAsNotFound bool) *testAPI {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	tasks := memory.NewTaskRepository(store)
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	avatars, err := storage.NewLocalStorage(storage.LocalStorageConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/uploads",
	})
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	userService := serviceimpl.NewUserService(users, tasks, tokens,
		memory.NewTokenRevocationStore(), memory.NewOAuthStateStore(), nil, avatars)
	taskService := serviceimpl.NewTaskService(tasks, users,
		access.NewPolicy(mode, denyAsNotFound), messaging.NoopPublisher{})

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestIDMiddleware())
	SetupRoutes(app, handlers.NewHandlers(&handlers.Services{
		UserService:  userService,
		TaskService:  taskService,
		Hub:          websocket.NewHub(),
		GoogleConfig: config.GoogleOAuthConfig{FrontendURL: "http://frontend.test"},
	}))

	return &testAPI{t: t, app: app}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(req)
}

func (a *testAPI) send(req *http.Request) (int, envelope) {
	a.t.Helper()

	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func (a *testAPI) register(name string) string {
	a.t.Helper()

	status, env := a.do("POST", "/api/v1/auth/registration", "", map[string]string{
		"username":  name,
		"email":     name + "@example.com",
		"password1": "correct-horse",
		"password2": "correct-horse",
	})
	if status != fiber.StatusCreated {
		a.t.Fatalf("register %s: status %d, error %+v", name, status, env.Error)
	}

	var auth struct {
		Token string `json:"token"`
	}
	decode(a.t, env, &auth)
	return auth.Token
}

func (a *testAPI) createTask(token, title string) taskBody {
	a.t.Helper()

	status, env := a.do("POST", "/api/v1/tasks", token, map[string]any{"title": title})
	if status != fiber.StatusCreated {
		a.t.Fatalf("create %q: status %d", title, status)
	}
	var task taskBody
	decode(a.t, env, &task)
	return task
}

func decode(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestTaskLifecycleStrict(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	alice := api.register("alice")
	bob := api.register("bob")

	status, env := api.do("POST", "/api/v1/tasks", alice, map[string]any{
		"title":       "Buy milk",
		"description": "two litres",
		"date":        "2024-05-01",
		"checked":     true,
		"owner":       "bob@example.com",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	var created taskBody
	decode(t, env, &created)
	if created.Owner != "alice@example.com" || created.Date != "2024-05-01" || !created.Checked {
		t.Fatalf("created = %+v", created)
	}

	path := "/api/v1/tasks/" + created.ID

	if status, _ := api.do("GET", path, alice, nil); status != fiber.StatusOK {
		t.Fatalf("owner read = %d", status)
	}

	checks := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"other reads", "GET", path, bob, nil, fiber.StatusNotFound},
		{"other updates", "PUT", path, bob, map[string]any{"title": "mine"}, fiber.StatusNotFound},
		{"other deletes", "DELETE", path, bob, nil, fiber.StatusNotFound},
		{"anonymous lists", "GET", "/api/v1/tasks", "", nil, fiber.StatusUnauthorized},
		{"anonymous reads", "GET", path, "", nil, fiber.StatusUnauthorized},
		{"anonymous creates", "POST", "/api/v1/tasks", "", map[string]any{"title": "x"}, fiber.StatusUnauthorized},
		{"malformed id", "GET", "/api/v1/tasks/not-a-uuid", alice, nil, fiber.StatusNotFound},
		{"bad token", "GET", "/api/v1/tasks", "garbage", nil, fiber.StatusUnauthorized},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := api.do(tt.method, tt.path, tt.token, tt.body); status != tt.want {
				t.Fatalf("status = %d, want %d", status, tt.want)
			}
		})
	}

	var listed []taskBody
	_, env = api.do("GET", "/api/v1/tasks", bob, nil)
	decode(t, env, &listed)
	if len(listed) != 0 {
		t.Fatalf("bob sees %d tasks", len(listed))
	}

	status, env = api.do("PUT", path, alice, map[string]any{"title": "Buy oat milk"})
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d", status)
	}
	var updated taskBody
	decode(t, env, &updated)
	if updated.Title != "Buy oat milk" || updated.Description != nil || updated.Checked {
		t.Fatalf("update was not a full replacement: %+v", updated)
	}

	if status, _ := api.do("DELETE", path, alice, nil); status != fiber.StatusNoContent {
		t.Fatalf("first delete = %d", status)
	}
	if status, _ := api.do("DELETE", path, alice, nil); status != fiber.StatusNotFound {
		t.Fatalf("second delete = %d", status)
	}
}

func TestListIsScopedToCaller(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	alice := api.register("alice")
	bob := api.register("bob")

	first := api.createTask(alice, "one")
	second := api.createTask(alice, "two")

	var listed []taskBody
	_, env := api.do("GET", "/api/v1/tasks", alice, nil)
	decode(t, env, &listed)
	if len(listed) != 2 || listed[0].ID != first.ID || listed[1].ID != second.ID {
		t.Fatalf("alice list = %+v", listed)
	}

	_, env = api.do("GET", "/api/v1/tasks", bob, nil)
	decode(t, env, &listed)
	if len(listed) != 0 {
		t.Fatalf("bob list = %+v", listed)
	}
}

func TestReadOpenMode(t *testing.T) {
	tests := []struct {
		name          string
		denyAsMissing bool
		wantWrite     int
	}{
		{"forbidden", false, fiber.StatusForbidden},
		{"hidden", true, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, access.ModeReadOpen, tt.denyAsMissing)
			alice := api.register("alice")
			bob := api.register("bob")
			task := api.createTask(alice, "shared")
			path := "/api/v1/tasks/" + task.ID

			var listed []taskBody
			status, env := api.do("GET", "/api/v1/tasks", "", nil)
			decode(t, env, &listed)
			if status != fiber.StatusOK || len(listed) != 1 {
				t.Fatalf("anonymous list = %d, %d tasks", status, len(listed))
			}

			if status, _ := api.do("GET", path, bob, nil); status != fiber.StatusOK {
				t.Fatalf("other read = %d", status)
			}
			if status, _ := api.do("PUT", path, bob, map[string]any{"title": "stolen"}); status != tt.wantWrite {
				t.Fatalf("other update = %d, want %d", status, tt.wantWrite)
			}
			if status, _ := api.do("DELETE", path, bob, nil); status != tt.wantWrite {
				t.Fatalf("other delete = %d, want %d", status, tt.wantWrite)
			}
			if status, _ := api.do("DELETE", path, "", nil); status != fiber.StatusUnauthorized {
				t.Fatalf("anonymous delete = %d", status)
			}
			if status, _ := api.do("POST", "/api/v1/tasks", "", map[string]any{"title": "x"}); status != fiber.StatusUnauthorized {
				t.Fatalf("anonymous create = %d", status)
			}

			var after taskBody
			_, env = api.do("GET", path, "", nil)
			decode(t, env, &after)
			if after.Title != "shared" {
				t.Fatalf("task changed by non-owner: %+v", after)
			}
		})
	}
}

func TestCreateTaskValidation(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	alice := api.register("alice")

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing title", map[string]any{"description": "x"}, "title"},
		{"blank title", map[string]any{"title": "   "}, "title"},
		{"long title", map[string]any{"title": strings.Repeat("a", 51)}, "title"},
		{"long description", map[string]any{"title": "ok", "description": strings.Repeat("d", 201)}, "description"},
		{"bad date", map[string]any{"title": "ok", "date": "15/03/2024"}, "date"},
		{"checked not bool", map[string]any{"title": "ok", "checked": "yes"}, "checked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.do("POST", "/api/v1/tasks", alice, tt.body)
			if status != fiber.StatusBadRequest {
				t.Fatalf("status = %d", status)
			}
			if env.Error == nil || env.Error.Details[tt.field] == "" {
				t.Fatalf("expected field error on %s, got %+v", tt.field, env.Error)
			}
		})
	}

	status, env := api.do("POST", "/api/v1/tasks", alice, nil)
	if status != fiber.StatusBadRequest || env.Error.Details["title"] == "" {
		t.Fatalf("empty body = %d, %+v", status, env.Error)
	}
}

func TestCreateTaskFormEncoded(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	alice := api.register("alice")

	form := url.Values{"title": {"From a form"}, "checked": {"true"}}
	req := httptest.NewRequest("POST", "/api/v1/tasks", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+alice)

	status, env := api.send(req)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, error %+v", status, env.Error)
	}
	var task taskBody
	decode(t, env, &task)
	if task.Title != "From a form" || !task.Checked {
		t.Fatalf("task = %+v", task)
	}
	if _, err := time.Parse("2006-01-02", task.Date); err != nil {
		t.Fatalf("default date %q: %v", task.Date, err)
	}
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	token := api.register("alice")

	status, env := api.do("POST", "/api/v1/auth/registration", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password1": "correct-horse", "password2": "correct-horse",
	})
	if status != fiber.StatusBadRequest || env.Error.Details["username"] == "" {
		t.Fatalf("duplicate username = %d, %+v", status, env.Error)
	}

	status, env = api.do("POST", "/api/v1/auth/registration", "", map[string]string{
		"username": "carol", "email": "carol@example.com", "password1": "correct-horse", "password2": "battery-staple",
	})
	if status != fiber.StatusBadRequest || env.Error.Details["password2"] == "" {
		t.Fatalf("password mismatch = %d, %+v", status, env.Error)
	}

	logins := []struct {
		name string
		body map[string]string
		want int
	}{
		{"ok", map[string]string{"username": "alice", "password": "correct-horse"}, fiber.StatusOK},
		{"with email", map[string]string{"username": "alice", "email": "alice@example.com", "password": "correct-horse"}, fiber.StatusOK},
		{"wrong password", map[string]string{"username": "alice", "password": "nope"}, fiber.StatusUnauthorized},
		{"missing username", map[string]string{"password": "correct-horse"}, fiber.StatusBadRequest},
	}
	for _, tt := range logins {
		t.Run("login "+tt.name, func(t *testing.T) {
			if status, _ := api.do("POST", "/api/v1/auth/login", "", tt.body); status != tt.want {
				t.Fatalf("status = %d, want %d", status, tt.want)
			}
		})
	}

	status, env = api.do("GET", "/api/v1/auth/user", token, nil)
	var user struct {
		Username string `json:"username"`
	}
	decode(t, env, &user)
	if status != fiber.StatusOK || user.Username != "alice" {
		t.Fatalf("get user = %d, %+v", status, user)
	}

	if status, _ := api.do("GET", "/api/v1/auth/user", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous get user = %d", status)
	}

	if status, _ := api.do("POST", "/api/v1/auth/token/verify", "", map[string]string{"token": token}); status != fiber.StatusOK {
		t.Fatalf("verify = %d", status)
	}

	if status, _ := api.do("POST", "/api/v1/auth/logout", token, nil); status != fiber.StatusOK {
		t.Fatalf("logout = %d", status)
	}
	if status, _ := api.do("GET", "/api/v1/tasks", token, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("revoked token still works: %d", status)
	}
	if status, _ := api.do("POST", "/api/v1/auth/token/verify", "", map[string]string{"token": token}); status != fiber.StatusBadRequest {
		t.Fatalf("verify revoked = %d", status)
	}
}

func TestDeleteUserRemovesTasks(t *testing.T) {
	api := newTestAPI(t, access.ModeReadOpen, false)
	alice := api.register("alice")
	bob := api.register("bob")
	api.createTask(alice, "one")
	api.createTask(bob, "two")

	if status, _ := api.do("DELETE", "/api/v1/auth/user", alice, nil); status != fiber.StatusNoContent {
		t.Fatalf("delete user = %d", status)
	}

	var listed []taskBody
	_, env := api.do("GET", "/api/v1/tasks", "", nil)
	decode(t, env, &listed)
	if len(listed) != 1 || listed[0].Owner != "bob@example.com" {
		t.Fatalf("tasks after delete = %+v", listed)
	}
}

func avatarRequest(t *testing.T, token, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if data != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest("PUT", "/api/v1/auth/user/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadAvatar(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	token := api.register("alice")

	status, env := api.send(avatarRequest(t, token, "image/png", nil))
	if status != fiber.StatusBadRequest || env.Error == nil || env.Error.Details["avatar"] == "" {
		t.Fatalf("missing file = %d %+v", status, env.Error)
	}

	status, env = api.send(avatarRequest(t, token, "text/plain", []byte("hello")))
	if status != fiber.StatusBadRequest || env.Error == nil || env.Error.Details["avatar"] == "" {
		t.Fatalf("text file = %d %+v", status, env.Error)
	}

	status, env = api.send(avatarRequest(t, token, "image/png", []byte("\x89PNG")))
	if status != fiber.StatusOK {
		t.Fatalf("upload = %d %+v", status, env.Error)
	}
	var user struct {
		Avatar string `json:"avatar"`
	}
	decode(t, env, &user)
	if !strings.HasPrefix(user.Avatar, "http://localhost:8080/uploads/avatars/") {
		t.Fatalf("avatar = %q", user.Avatar)
	}

	if status, _ := api.send(avatarRequest(t, "", "image/png", []byte("x"))); status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous upload = %d", status)
	}
}

func TestGoogleDisabled(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)

	if status, _ := api.do("GET", "/api/v1/auth/google", "", nil); status != fiber.StatusNotFound {
		t.Fatalf("google redirect = %d", status)
	}
	if status, _ := api.do("POST", "/api/v1/auth/google", "", map[string]string{"idToken": "x"}); status != fiber.StatusNotFound {
		t.Fatalf("google token login = %d", status)
	}
}

func TestHealthAndWebSocketGate(t *testing.T) {
	api := newTestAPI(t, access.ModeStrict, false)
	token := api.register("alice")

	if status, _ := api.do("GET", "/health", "", nil); status != fiber.StatusOK {
		t.Fatalf("health = %d", status)
	}
	if status, _ := api.do("GET", "/ws", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous ws = %d", status)
	}
	if status, _ := api.do("GET", "/ws?token="+token, "", nil); status != fiber.StatusUpgradeRequired {
		t.Fatalf("plain http ws = %d", status)
	}
}
