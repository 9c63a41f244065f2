package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fisiqia-be/internal/pkg/logger"
	"fisiqia-be/internal/pkg/serverutils"
	"fisiqia-be/internal/repository/memory"
	"fisiqia-be/internal/service"
	"fisiqia-be/pkg/llm/llmtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = `{"content":"Garrafa PET, mangueira e fita veda-rosca.","books":["Halliday. Fundamentos de Física"],"notes":""}`

func newApp(provider *llmtest.Provider) *fiber.App {
	log := logger.NewNopLogger()
	repo := memory.NewExchangeRepository(time.Hour)
	questionSvc := service.NewQuestionService(repo, provider, nil, service.QuestionServiceConfig{Timeout: time.Second}, log, log)
	reportSvc := service.NewReportService(repo, provider, nil, service.ReportServiceConfig{Timeout: 5 * time.Second}, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	NewQuestionController(questionSvc).RegisterRoutes(app)
	NewReportController(reportSvc).RegisterRoutes(app)
	NewHealthController("memory", provider.Name()).RegisterRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, respHeader, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respHeader{resp.Header.Get("Content-Type"), resp.Header.Get("Content-Disposition")}, data
}

type respHeader struct {
	contentType        string
	contentDisposition string
}

func jsonBody(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestSectionRoutesAnswer(t *testing.T) {
	app := newApp(llmtest.Reply(reply))

	for _, path := range []string{"/visao", "/materiais", "/montagem", "/procedimento"} {
		status, _, data := post(t, app, path, `{"project":"Irrigation System","session_id":"s1"}`)
		assert.Equal(t, 200, status, path)
		body := jsonBody(t, data)
		assert.NotEmpty(t, body["resposta"], path)
		assert.Equal(t, "s1", body["session_id"])
	}
}

func TestQuestionRouteAcceptsLegacyFields(t *testing.T) {
	app := newApp(llmtest.Reply(reply))

	status, _, data := post(t, app, "/perguntar", `{"pergunta":"Qual a força normal?","projeto":"Plano inclinado","session_id":"s1"}`)
	require.Equal(t, 200, status, string(data))
	body := jsonBody(t, data)
	assert.Equal(t, "general", body["secao"])
	assert.Equal(t, "Plano inclinado", body["projeto"])
}

func TestQuestionRouteErrors(t *testing.T) {
	cases := []struct {
		name     string
		provider *llmtest.Provider
		path     string
		body     string
		status   int
		codigo   string
	}{
		{"missing project", llmtest.Reply(reply), "/materiais", `{"question":"x","session_id":"s"}`, 400, "validation"},
		{"general without question", llmtest.Reply(reply), "/perguntar", `{"project":"P","session_id":"s"}`, 400, "validation"},
		{"malformed body", llmtest.Reply(reply), "/visao", `{"project":`, 400, "validation"},
		{"empty body", llmtest.Reply(reply), "/visao", ``, 400, "validation"},
		{"provider failure", llmtest.Fail(errors.New("boom: secret")), "/materiais", `{"project":"P","session_id":"s"}`, 500, "upstream"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, _, data := post(t, newApp(c.provider), c.path, c.body)
			assert.Equal(t, c.status, status)
			body := jsonBody(t, data)
			assert.NotEmpty(t, body["erro"])
			assert.Equal(t, c.codigo, body["codigo"])
			assert.NotContains(t, string(data), "secret")
		})
	}
}

func TestReportRoute(t *testing.T) {
	app := newApp(llmtest.Reply(reply))

	status, _, data := post(t, app, "/relatorio", `{"projeto":"Plano inclinado","session_id":"s1"}`)
	assert.Equal(t, 404, status)
	assert.Equal(t, "nothing_to_report", jsonBody(t, data)["codigo"])

	status, _, _ = post(t, app, "/materiais", `{"project":"Plano inclinado","session_id":"s1"}`)
	require.Equal(t, 200, status)

	status, hdr, data := post(t, app, "/relatorio", `{"project":"Plano inclinado","session_id":"s1"}`)
	require.Equal(t, 200, status, string(data))
	assert.Equal(t, "application/pdf", hdr.contentType)
	assert.Equal(t, `attachment; filename="relatorio.pdf"`, hdr.contentDisposition)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestReportRouteValidation(t *testing.T) {
	status, _, data := post(t, newApp(llmtest.Reply(reply)), "/relatorio", `{"project":"P"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "validation", jsonBody(t, data)["codigo"])
}

func TestHistoryRoute(t *testing.T) {
	app := newApp(llmtest.Reply(reply))
	post(t, app, "/visao", `{"project":"A","session_id":"s1"}`)
	post(t, app, "/visao", `{"project":"B","session_id":"s1"}`)

	resp, err := app.Test(httptest.NewRequest("GET", "/historico/s1?projeto=A", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Total)
}

func TestHealthRoute(t *testing.T) {
	resp, err := newApp(llmtest.Reply(reply)).Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fake/test", body["provider"])
}
