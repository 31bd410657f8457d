package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/biomatrix/config"
	apihttp "github.com/Alijeyrad/biomatrix/internal/api/http"
	"github.com/Alijeyrad/biomatrix/internal/api/http/router"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/internal/schema"
	"github.com/Alijeyrad/biomatrix/internal/testdb"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

type envelope struct {
	Data  []json.RawMessage `json:"data"`
	Error string            `json:"error"`
}

func newApp(t *testing.T, conn *database.Connector) *fiber.App {
	t.Helper()
	m, err := schema.NewModel()
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Server.Environment = "test"

	r := router.NewRouter(router.Params{
		Cfg:         cfg,
		Log:         log,
		Conn:        conn,
		Interpreter: query.New(m, conn, query.WithLogger(log)),
	})
	return apihttp.New(cfg, r, false)
}

func get(t *testing.T, app *fiber.App, target string) (int, envelope, nethttp.Header) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()

	var body envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("GET %s: decode %q: %v", target, raw, err)
		}
	}
	return resp.StatusCode, body, resp.Header
}

func TestRoutes(t *testing.T) {
	app := newApp(t, testdb.Connector(t))

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLen    int
	}{
		{"bare entity", "/api/v1/query?q=Patient", 200, 3},
		{"string comparison", "/api/v1/query?q=" + url.QueryEscape("CAD.cad_pt_no_txt=='0042'"), 200, 1},
		{"computed attribute", "/api/v1/query?q=" + url.QueryEscape("Pathology.diagnosis=='Benign'"), 200, 1},
		{"empty result", "/api/v1/query?q=" + url.QueryEscape("Exam.exam_tp_int=='CT'"), 200, 0},
		{"missing query", "/api/v1/query", 400, 0},
		{"unknown entity", "/api/v1/query?q=Nope", 400, 0},
		{"unknown field", "/api/v1/query?q=" + url.QueryEscape("Exam.bogus==1"), 400, 0},
		{"syntax error", "/api/v1/query?q=" + url.QueryEscape("Exam.exam_tp_int=="), 400, 0},
		{"entities", "/api/v1/entities", 200, 9},
		{"history", "/api/v1/patients/1/history", 200, 6},
		{"history of patient without records", "/api/v1/patients/3/history", 200, 0},
		{"history of missing patient", "/api/v1/patients/99/history", 404, 0},
		{"history with bad id", "/api/v1/patients/x/history", 400, 0},
		{"related collection", "/api/v1/records/Exam/10/findings", 200, 2},
		{"related many to many", "/api/v1/records/Lesion/70/exams", 200, 1},
		{"unknown relation", "/api/v1/records/Exam/10/bogus", 404, 0},
		{"related of unknown entity", "/api/v1/records/Nope/1/exams", 400, 0},
		{"related of missing record", "/api/v1/records/Exam/99/findings", 404, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, app, tt.target)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (error %q)", status, tt.wantStatus, body.Error)
			}
			if status == 200 && len(body.Data) != tt.wantLen {
				t.Errorf("len(data) = %d, want %d", len(body.Data), tt.wantLen)
			}
			if status != 200 && body.Error == "" {
				t.Error("error response without message")
			}
		})
	}
}

func TestHistoryEntryShape(t *testing.T) {
	app := newApp(t, testdb.Connector(t))

	_, body, _ := get(t, app, "/api/v1/patients/1/history")
	if len(body.Data) == 0 {
		t.Fatal("empty history")
	}
	var first struct {
		Kind   string `json:"kind"`
		Record struct {
			Entity string `json:"entity"`
			Key    int64  `json:"key"`
		} `json:"record"`
	}
	if err := json.Unmarshal(body.Data[0], &first); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if first.Kind != "exam" || first.Record.Entity != "Exam" || first.Record.Key != 12 {
		t.Errorf("first entry = %+v, want exam 12", first)
	}
}

func TestDisconnectedStore(t *testing.T) {
	app := newApp(t, database.NewConnector())

	if status, _, _ := get(t, app, "/api/v1/query?q=Patient"); status != nethttp.StatusServiceUnavailable {
		t.Errorf("query status = %d, want 503", status)
	}
	if status, _, _ := get(t, app, "/readyz"); status != nethttp.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503", status)
	}
	// Names are resolved before a session is needed.
	for _, q := range []string{"Nope", "Exam.x==", "Exam.exam_tp_int=='MRI',CAD.pt_id==1"} {
		if status, _, _ := get(t, app, "/api/v1/query?q="+url.QueryEscape(q)); status != nethttp.StatusBadRequest {
			t.Errorf("query %q status = %d, want 400", q, status)
		}
	}
	if status, _, _ := get(t, app, "/api/v1/records/Nope/1/exams"); status != nethttp.StatusBadRequest {
		t.Errorf("unknown entity record status = %d, want 400", status)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newApp(t, testdb.Connector(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET /livez: %v", err)
	}
	if got := resp.Header.Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}

	_, _, h := get(t, app, "/livez")
	if h.Get("X-Request-Id") == "" {
		t.Error("no request ID assigned")
	}
}
