package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
)

// APIStore talks to the remote bills store service over HTTP.
type APIStore struct {
	config     *config.APIStoreConfig
	httpClient *http.Client
}

func NewAPIStore(cfg *config.APIStoreConfig) *APIStore {
	return &APIStore{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (s *APIStore) Bills() BillsResource {
	return &apiBills{store: s}
}

type apiBills struct {
	store *APIStore
}

// List fetches all bills for the given email scope.
func (r *apiBills) List(ctx context.Context, email string) ([]model.Bill, error) {
	endpoint := r.store.config.BaseURL + "/bills?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	r.store.setHeaders(req)

	resp, err := r.store.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var bills []model.Bill
	if err := json.NewDecoder(resp.Body).Decode(&bills); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return bills, nil
}

// Create uploads the receipt file and opens a draft bill record.
func (r *apiBills) Create(ctx context.Context, in CreateBillInput) (CreateBillResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := createFilePart(writer, in.FileName, in.ContentType)
	if err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, in.File); err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.WriteField("email", in.Email); err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to build form: %w", err)
	}
	if in.PreviousKey != "" {
		if err := writer.WriteField("previousKey", in.PreviousKey); err != nil {
			return CreateBillResult{}, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.store.config.BaseURL+"/bills", &body)
	if err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	r.store.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.store.httpClient.Do(req)
	if err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return CreateBillResult{}, err
	}

	var result CreateBillResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return CreateBillResult{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return result, nil
}

// Update submits the assembled bill against its draft record.
func (r *apiBills) Update(ctx context.Context, bill model.Bill) (model.Bill, error) {
	jsonData, err := json.Marshal(bill)
	if err != nil {
		return model.Bill{}, fmt.Errorf("failed to marshal bill: %w", err)
	}

	endpoint := r.store.config.BaseURL + "/bills/" + url.PathEscape(bill.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return model.Bill{}, fmt.Errorf("failed to create request: %w", err)
	}
	r.store.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.store.httpClient.Do(req)
	if err != nil {
		return model.Bill{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return model.Bill{}, err
	}

	var updated model.Bill
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return model.Bill{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return updated, nil
}

func (s *APIStore) setHeaders(req *http.Request) {
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}
	req.Header.Set("Accept", "application/json")
}

// checkStatus turns a non-2xx response into a StoreError carrying the
// response status code.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StoreError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

func createFilePart(writer *multipart.Writer, fileName, contentType string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return writer.CreatePart(h)
}
