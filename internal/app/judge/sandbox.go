package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"codecampus/internal/common"
)

// languageIDs maps platform language slugs to sandbox runtime identifiers.
// This table is fixed; an unknown slug is rejected before any network call.
var languageIDs = map[string]int{
	"python":     71,
	"javascript": 63,
	"java":       62,
	"cpp":        54,
	"c":          50,
}

// IsSupportedLanguage reports whether slug maps to a sandbox runtime.
func IsSupportedLanguage(slug string) bool {
	_, ok := languageIDs[slug]
	return ok
}

// ExecRequest is one (source, language, stdin, expected-output) tuple sent to
// the sandbox. Payloads are base64-encoded on the wire since user code may
// contain arbitrary bytes.
type ExecRequest struct {
	SourceCode     string
	Language       string
	Stdin          string
	ExpectedOutput *string
}

// ExecutionResult is the normalized outcome of one sandbox round trip. It is
// ephemeral and never persisted verbatim.
type ExecutionResult struct {
	StatusID      int
	StatusName    string
	Stdout        string
	Stderr        string
	CompileOutput string
	TimeSeconds   float64
	MemoryKB      int
}

// Executor abstracts the sandbox so the runner can be exercised without a
// live service.
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecutionResult, error)
}

// SandboxClient is a synchronous client for an external code-execution
// service. It performs exactly one round trip per test case and never retries:
// untrusted code retried automatically could amplify resource abuse.
type SandboxClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewSandboxClient(baseURL, authToken string, timeout time.Duration) *SandboxClient {
	return &SandboxClient{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sandboxRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput *string `json:"expected_output,omitempty"`
}

type sandboxResponse struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
}

// Execute submits req and waits synchronously for a terminal status.
func (c *SandboxClient) Execute(ctx context.Context, req ExecRequest) (*ExecutionResult, error) {
	langID, ok := languageIDs[req.Language]
	if !ok {
		return nil, fmt.Errorf("language %q: %w", req.Language, common.ErrUnsupportedLanguage)
	}

	payload := sandboxRequest{
		SourceCode: base64.StdEncoding.EncodeToString([]byte(req.SourceCode)),
		LanguageID: langID,
		Stdin:      base64.StdEncoding.EncodeToString([]byte(req.Stdin)),
	}
	if req.ExpectedOutput != nil {
		enc := base64.StdEncoding.EncodeToString([]byte(*req.ExpectedOutput))
		payload.ExpectedOutput = &enc
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal sandbox request: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=true&wait=true"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sandbox request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		httpReq.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sandbox round trip failed: %w", common.ErrSandboxUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sandbox returned HTTP %d: %w", resp.StatusCode, common.ErrSandboxUnavailable)
	}

	var sbResp sandboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&sbResp); err != nil {
		return nil, fmt.Errorf("decode sandbox response: %w", common.ErrSandboxUnavailable)
	}

	result := &ExecutionResult{
		StatusID:      sbResp.Status.ID,
		StatusName:    sbResp.Status.Description,
		Stdout:        decodeBase64Field(sbResp.Stdout),
		Stderr:        decodeBase64Field(sbResp.Stderr),
		CompileOutput: decodeBase64Field(sbResp.CompileOutput),
	}
	if sbResp.Time != nil {
		if t, err := strconv.ParseFloat(*sbResp.Time, 64); err == nil {
			result.TimeSeconds = t
		}
	}
	if sbResp.Memory != nil {
		result.MemoryKB = *sbResp.Memory
	}
	return result, nil
}

// decodeBase64Field tolerates plain-text fields: some sandbox deployments skip
// encoding on error strings.
func decodeBase64Field(field *string) string {
	if field == nil {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(*field)
	if err != nil {
		return *field
	}
	return string(decoded)
}
