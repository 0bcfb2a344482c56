// README: Bench cases; environment, migration, wizard walk-through, admin report and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		start := time.Now()
		res := tc.Run(ctx, r)
		if res.Latency == 0 {
			res.Latency = time.Since(start).Round(time.Millisecond)
		}
		results = append(results, res)
		fmt.Printf("%-5s %s (%s)", res.Status, tc.Name, res.Latency)
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusFail, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				var missing []string
				for _, t := range tables {
					var exists bool
					if err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, t).Scan(&exists); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						missing = append(missing, t)
					}
				}
				if len(missing) > 0 {
					return Result{Status: statusFail, Note: "missing: " + strings.Join(missing, ",")}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("%d tables", len(tables))}
			},
		},
		{
			Name: "API: server reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, err := r.call(ctx, http.MethodGet, base+"/health", "", "", nil)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "API: identity header required",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, err := r.call(ctx, http.MethodPost, base+"/api/wizard", "", "", nil)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusUnauthorized {
					return Result{Status: statusFail, Note: fmt.Sprintf("expected 401, got %d", status)}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Wizard: photo editing walk-through",
			Run:  func(ctx context.Context, r *Runner) Result { return r.walkThrough(ctx, base) },
		},
		{
			Name: "Admin: reliability report",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, err := r.call(ctx, http.MethodGet, base+"/api/admin/providers/reliability", r.cfg.AdminID, "admin", nil)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: statusFail, Note: fmt.Sprintf("status=%d", status)}
				}
				providers, _ := body["providers"].([]any)
				return Result{Status: statusPass, Note: fmt.Sprintf("%d providers", len(providers))}
			},
		},
		{
			Name: "Perf: wizard start throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodPost, base+"/api/wizard")
			},
		},
	}
}

// walkThrough drives a session to the review step without submitting. Photo editing needs no
// location eligibility, so it runs against an empty provider index.
func (r *Runner) walkThrough(ctx context.Context, base string) Result {
	uid := r.cfg.UserID
	status, body, err := r.call(ctx, http.MethodPost, base+"/api/wizard", uid, "", nil)
	if err != nil || status != http.StatusCreated {
		return failed("start", status, err)
	}
	id, _ := body["id"].(string)
	session := base + "/api/wizard/" + id
	defer r.call(context.WithoutCancel(ctx), http.MethodDelete, session, uid, "", nil)

	steps := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"address", http.MethodPut, "/address", map[string]string{"street": "Leopoldstraße", "house_number": "12", "postal_code": "80802", "city": "München"}},
		{"category", http.MethodPut, "/category", map[string]string{"category": "photo_editing"}},
		{"configuration", http.MethodPut, "/configuration", map[string]any{"photos": 25, "option_ids": []string{"sky_replacement"}}},
	}
	for _, s := range steps {
		status, _, err := r.call(ctx, s.method, session+s.path, uid, "", s.body)
		if err != nil || status != http.StatusOK {
			return failed(s.name, status, err)
		}
	}

	status, body, err = r.call(ctx, http.MethodGet, session+"/quote", uid, "", nil)
	if err != nil || status != http.StatusOK {
		return failed("quote", status, err)
	}
	if total, _ := body["total"].(string); total != "272.51" {
		return Result{Status: statusFail, Note: fmt.Sprintf("quote total=%v, want 272.51", body["total"])}
	}
	return Result{Status: statusPass}
}

func failed(step string, status int, err error) Result {
	if err != nil {
		return Result{Status: statusFail, Note: step + ": " + err.Error()}
	}
	return Result{Status: statusFail, Note: fmt.Sprintf("%s: status=%d", step, status)}
}

func (r *Runner) call(ctx context.Context, method, url, uid, role string, payload any) (int, map[string]any, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out, nil
}

func perfLoad(ctx context.Context, r *Runner, method, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, body, err := r.call(ctx, method, url, r.cfg.UserID, "", nil)
				if err != nil || status >= 300 {
					errCount.Add(1)
					continue
				}
				count.Add(1)
				if id, ok := body["id"].(string); ok {
					r.call(ctx, http.MethodDelete, url+"/"+id, r.cfg.UserID, "", nil)
				}
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
