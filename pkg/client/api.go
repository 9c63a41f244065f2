package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"fisiqia-be/pkg/section"

	"github.com/cenkalti/backoff/v5"
)

// ErrTransport wraps failures that never produced an HTTP response.
var ErrTransport = errors.New("falha de comunicação com o servidor")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
	Missing []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erro HTTP %d", e.Status)
	}
	return e.Message
}

type Answer struct {
	Resposta    string   `json:"resposta"`
	Referencias []string `json:"referencias"`
	Notas       string   `json:"notas,omitempty"`
	Secao       string   `json:"secao"`
	Projeto     string   `json:"projeto"`
	SessionId   string   `json:"session_id"`
}

type API struct {
	baseURL    string
	httpClient *http.Client
	retry      bool
	retryWait  time.Duration
}

type APIOption func(*API)

func WithHTTPClient(c *http.Client) APIOption {
	return func(a *API) { a.httpClient = c }
}

// WithRetry retries a question once when the request fails before the
// server answers.
func WithRetry(wait time.Duration) APIOption {
	return func(a *API) {
		a.retry = true
		a.retryWait = wait
	}
}

func NewAPI(baseURL string, opts ...APIOption) *API {
	a := &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type askPayload struct {
	Question  string `json:"question,omitempty"`
	Project   string `json:"project"`
	SessionId string `json:"session_id"`
}

func (a *API) Ask(ctx context.Context, sec section.Section, project, session, question string) (*Answer, error) {
	if !sec.Askable() {
		return nil, fmt.Errorf("section %s does not take questions", sec.Key())
	}
	body, err := json.Marshal(askPayload{Question: question, Project: project, SessionId: session})
	if err != nil {
		return nil, err
	}

	call := func() (*Answer, error) {
		resp, err := a.post(ctx, sec.Route(), body)
		if err != nil {
			if !errors.Is(err, ErrTransport) || ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			return nil, backoff.Permanent(decodeAPIError(resp))
		}

		var out Answer
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode answer: %w", err))
		}
		return &out, nil
	}

	tries := uint(1)
	if a.retry {
		tries = 2
	}
	return backoff.Retry(ctx, call,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.retryWait)),
		backoff.WithMaxTries(tries),
	)
}

// DownloadReport returns the PDF bytes for the session's report.
func (a *API) DownloadReport(ctx context.Context, project, session string) ([]byte, error) {
	body, err := json.Marshal(askPayload{Project: project, SessionId: session})
	if err != nil {
		return nil, err
	}

	resp, err := a.post(ctx, section.Report.Route(), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, decodeAPIError(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/pdf" {
		return nil, fmt.Errorf("resposta inesperada do servidor: %q", resp.Header.Get("Content-Type"))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("o servidor retornou um relatório vazio")
	}
	return pdf, nil
}

func (a *API) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return resp, nil
}

type errorBody struct {
	Erro      string   `json:"erro"`
	Codigo    string   `json:"codigo"`
	Faltantes []string `json:"faltantes"`
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Codigo
		apiErr.Message = body.Erro
		apiErr.Missing = body.Faltantes
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
