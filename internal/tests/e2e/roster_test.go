//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/schoolroster/roster/config"
	"github.com/schoolroster/roster/internal/auth"
	"github.com/schoolroster/roster/internal/db"
	"github.com/schoolroster/roster/internal/server"
	"github.com/schoolroster/roster/types"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}
	setEnv(root)

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown(context.Background())
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown(context.Background())
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestRosterLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	suffix := time.Now().UnixNano()
	adminEmail := fmt.Sprintf("admin_%d@school.test", suffix)
	studentEmail := fmt.Sprintf("student_%d@school.test", suffix)

	if err := createUser(client, baseURL, url.Values{
		"mail":      {adminEmail},
		"password":  {"Passord01"},
		"role":      {"ADMIN"},
		"firstName": {"Test"},
		"lastName":  {"Admin"},
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	token, err := login(client, baseURL, adminEmail, "Passord01", "/admin")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}

	classID, err := createClass(client, baseURL, fmt.Sprintf("E2E-%d", suffix))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}

	if err := createUser(client, baseURL, url.Values{
		"mail":         {studentEmail},
		"password":     {"student-pass"},
		"firstName":    {"Ada"},
		"lastName":     {"Lovelace"},
		"model":        {"ThinkPad X13"},
		"assignedDate": {"2024-08-19"},
		"classId":      {fmt.Sprint(classID)},
	}); err != nil {
		t.Fatalf("create student: %v", err)
	}

	student, err := findUser(client, baseURL, studentEmail)
	if err != nil {
		t.Fatalf("find student: %v", err)
	}
	if student.ClassID == nil || *student.ClassID != classID {
		t.Fatalf("student class = %v, want %d", student.ClassID, classID)
	}
	if student.PersonalInfo == nil || student.PersonalInfo.FirstName != "Ada" {
		t.Fatalf("unexpected personal info: %+v", student.PersonalInfo)
	}

	if err := expectStatus(client, baseURL+"/admin/edit", token, http.StatusOK); err != nil {
		t.Fatalf("admin listing: %v", err)
	}
	if err := expectStatus(client, baseURL+"/admin/edit", *student.Token, http.StatusFound); err != nil {
		t.Fatalf("student on admin listing: %v", err)
	}

	if err := postForm(client, baseURL+"/api/updateUser/", url.Values{
		"token":    {*student.Token},
		"password": {"rotated-pass"},
	}, http.StatusFound); err != nil {
		t.Fatalf("update student: %v", err)
	}
	if _, err := login(client, baseURL, studentEmail, "rotated-pass", "/welcome"); err != nil {
		t.Fatalf("login with rotated password: %v", err)
	}
	if hash, err := storedDigest(studentEmail); err != nil || hash != auth.Hash("rotated-pass") {
		t.Fatalf("stored digest = %q (%v)", hash, err)
	}

	if err := postForm(client, fmt.Sprintf("%s/api/removeFromClass/%d", baseURL, student.ID), nil, http.StatusFound); err != nil {
		t.Fatalf("remove from class: %v", err)
	}
	var class types.Class
	if err := getJSON(client, fmt.Sprintf("%s/api/getClass/%d", baseURL, classID), &class); err != nil {
		t.Fatalf("get class: %v", err)
	}
	if len(class.Users) != 0 {
		t.Fatalf("class still has %d members", len(class.Users))
	}

	if err := postForm(client, fmt.Sprintf("%s/api/deleteUser/%d", baseURL, student.ID), nil, http.StatusOK); err != nil {
		t.Fatalf("delete student: %v", err)
	}
	var gone *types.User
	if err := getJSON(client, fmt.Sprintf("%s/api/getUser/%d", baseURL, student.ID), &gone); err != nil {
		t.Fatalf("get deleted student: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected null after delete, got %+v", gone)
	}
}

func createUser(client *http.Client, baseURL string, form url.Values) error {
	return postForm(client, baseURL+"/api/createUser", form, http.StatusFound)
}

func createClass(client *http.Client, baseURL, grade string) (int, error) {
	resp, err := client.PostForm(baseURL+"/api/createClass", url.Values{"grade": {grade}})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var id int
	if _, err := fmt.Sscanf(resp.Header.Get("Location"), "/admin/manage/%d", &id); err != nil {
		return 0, fmt.Errorf("parse location %q: %w", resp.Header.Get("Location"), err)
	}
	return id, nil
}

func login(client *http.Client, baseURL, email, password, wantTarget string) (string, error) {
	resp, err := client.PostForm(baseURL+"/login", url.Values{"mail": {email}, "password": {password}})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if loc := resp.Header.Get("Location"); loc != wantTarget {
		return "", fmt.Errorf("redirected to %q, want %q", loc, wantTarget)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("token cookie missing")
}

func findUser(client *http.Client, baseURL, email string) (types.User, error) {
	var users []types.User
	if err := getJSON(client, baseURL+"/api/users", &users); err != nil {
		return types.User{}, err
	}
	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, fmt.Errorf("user %s not listed", email)
}

func postForm(client *http.Client, target string, form url.Values, wantStatus int) error {
	resp, err := client.PostForm(target, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func getJSON(client *http.Client, target string, into any) error {
	resp, err := client.Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func expectStatus(client *http.Client, target, token string, want int) error {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("status %d, want %d", resp.StatusCode, want)
	}
	return nil
}

func storedDigest(email string) (string, error) {
	conn, err := sql.Open("postgres", db.PostgresURL(config.LoadConfig()))
	if err != nil {
		return "", err
	}
	defer conn.Close()

	var digest string
	err = conn.QueryRow(`SELECT password_hash FROM users WHERE email = $1`, email).Scan(&digest)
	return digest, err
}

func setEnv(root string) {
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "roster")
	_ = os.Setenv("DB_PASSWORD", "roster")
	_ = os.Setenv("DB_NAME", "roster")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("PAGES_BACKEND", config.PagesLocal)
	_ = os.Setenv("PAGES_DIR", filepath.Join(root, "public"))
}

func waitForPostgres(ctx context.Context) error {
	conn, err := sql.Open("postgres", db.PostgresURL(config.LoadConfig()))
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")

	migrator, err := migrate.New(migrationsURL, db.PostgresURL(config.LoadConfig()))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func startServer(ctx context.Context) (*server.Server, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(ctx, config.LoadConfig(), logger)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
