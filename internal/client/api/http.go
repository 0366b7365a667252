package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carechain/carechain/internal/client/models"
	"github.com/carechain/carechain/internal/client/session"
	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/logging"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how read requests are retried on transport failures.
// Writes are never retried: a duplicated create would violate the pending
// queue's promotion contract.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries uint64
	// BaseDelay seeds the fibonacci backoff between attempts.
	BaseDelay time.Duration
}

// DefaultRetryPolicy retries reads twice with a 250ms fibonacci backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: 250 * time.Millisecond}
}

// RESTClient talks to the CareChain backend over HTTP/JSON.
type RESTClient struct {
	baseURL string
	hc      *http.Client
	sess    *session.Session
	policy  RetryPolicy
	log     logging.Logger
}

func NewRESTClient(baseURL string, sess *session.Session, policy RetryPolicy, log logging.Logger) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
		sess:    sess,
		policy:  policy,
		log:     log,
	}
}

// patientPayload is the server-shape (snake_case) representation of a
// patient record.
type patientPayload struct {
	FullName         string   `json:"full_name"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender,omitempty"`
	BloodType        string   `json:"blood_type,omitempty"`
	Condition        string   `json:"condition"`
	Severity         string   `json:"severity,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	Allergies        string   `json:"allergies,omitempty"`
	Symptoms         string   `json:"symptoms,omitempty"`
	EmergencyContact string   `json:"emergency_contact,omitempty"`
	Insurance        string   `json:"insurance,omitempty"`
}

type patientResponse struct {
	ID int64 `json:"id"`
	patientPayload
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPayload(p *models.Patient) patientPayload {
	return patientPayload{
		FullName:         p.FullName,
		Age:              p.Age,
		Gender:           p.Gender,
		BloodType:        p.BloodType,
		Condition:        p.Condition,
		Severity:         string(p.Severity),
		Warnings:         p.Warnings,
		Allergies:        p.Allergies,
		Symptoms:         p.Symptoms,
		EmergencyContact: p.EmergencyContact,
		Insurance:        p.Insurance,
	}
}

func fromResponse(r patientResponse) models.Patient {
	return models.Patient{
		ID:               r.ID,
		FullName:         r.FullName,
		Age:              r.Age,
		Gender:           r.Gender,
		BloodType:        r.BloodType,
		Condition:        r.Condition,
		Severity:         models.Severity(r.Severity),
		Warnings:         r.Warnings,
		Allergies:        r.Allergies,
		Symptoms:         r.Symptoms,
		EmergencyContact: r.EmergencyContact,
		Insurance:        r.Insurance,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// do performs one HTTP exchange. Transport errors are returned wrapped but
// otherwise untyped; status errors go through decodeError.
func (c *RESTClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.sess.Token())
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// doWithRetry wraps a read in a bounded fibonacci backoff. Only transport
// failures are retried; server verdicts (401, 404, 422, ...) are final.
func (c *RESTClient) doWithRetry(ctx context.Context, method, path string, out any, authed bool) error {
	backoff := retry.WithMaxRetries(c.policy.MaxRetries, retry.NewFibonacci(c.policy.BaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, method, path, nil, out, authed)
		if err != nil && isTransient(err) {
			c.log.Debug(ctx, "retrying request", "method", method, "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	var apiErr *APIError
	switch {
	case err == nil:
		return false
	case errors.As(err, &apiErr):
		return false
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorNotFound):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

func (c *RESTClient) Signup(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", signupRequest{Name: name, Email: email, Password: password}, nil, false)
}

// Login posts form-encoded credentials, matching the backend's OAuth2
// password flow, and returns the issued bearer token.
func (c *RESTClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	return &LoginResult{Token: lr.AccessToken, Email: lr.User.Email, Name: lr.User.Name}, nil
}

func (c *RESTClient) Verify(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/verify", nil, nil, true)
}

// Ping probes /health with a short deadline. It is not retried: the
// connectivity monitor calls it on every tick anyway.
func (c *RESTClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/health", nil, nil, false)
}

func (c *RESTClient) ListPatients(ctx context.Context) ([]models.Patient, error) {
	var rs []patientResponse
	if err := c.doWithRetry(ctx, http.MethodGet, "/patients", &rs, true); err != nil {
		return nil, err
	}
	patients := make([]models.Patient, 0, len(rs))
	for _, r := range rs {
		patients = append(patients, fromResponse(r))
	}
	return patients, nil
}

func (c *RESTClient) GetPatient(ctx context.Context, id int64) (*models.Patient, error) {
	var r patientResponse
	if err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/patients/%d", id), &r, true); err != nil {
		return nil, err
	}
	p := fromResponse(r)
	return &p, nil
}

func (c *RESTClient) CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	var r patientResponse
	if err := c.do(ctx, http.MethodPost, "/patients", toPayload(p), &r, true); err != nil {
		return nil, err
	}
	created := fromResponse(r)
	return &created, nil
}

func (c *RESTClient) UpdatePatient(ctx context.Context, id int64, p *models.Patient) (*models.Patient, error) {
	var r patientResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/patients/%d", id), toPayload(p), &r, true); err != nil {
		return nil, err
	}
	updated := fromResponse(r)
	return &updated, nil
}

func (c *RESTClient) DeletePatient(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/patients/%d", id), nil, nil, true)
}

func (c *RESTClient) QRCode(ctx context.Context, id int64) (*models.QRPayload, error) {
	var payload models.QRPayload
	if err := c.doWithRetry(ctx, http.MethodGet, fmt.Sprintf("/patients/%d/qrcode", id), &payload, true); err != nil {
		return nil, err
	}
	return &payload, nil
}
