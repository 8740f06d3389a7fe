// Package collect - GCP collector
package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cloudcost/core/types"
	"cloudcost/internal/errors"
	"cloudcost/internal/logging"
)

// GCPCollector fetches billing and inventory data over the GCP REST
// APIs. Billing comes from a BigQuery billing export; instances from
// the Compute API; inventory from the Cloud Asset API.
type GCPCollector struct {
	projectID      string
	serviceAccount string // JSON key file content
	httpClient     *http.Client
	token          string
	tokenExpiry    time.Time
	log            *zap.SugaredLogger
}

// NewGCPCollector creates a GCP collector. serviceAccountPath may be
// empty, in which case a GOOGLE_OAUTH_ACCESS_TOKEN environment token
// is used directly.
func NewGCPCollector(projectID, serviceAccountPath string) (*GCPCollector, error) {
	c := &GCPCollector{
		projectID:  projectID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logging.Named("collect.gcp").Sugar(),
	}

	if serviceAccountPath != "" {
		key, err := os.ReadFile(serviceAccountPath)
		if err != nil {
			return nil, errors.Collect("failed to read service account key", err).
				WithContext("path", serviceAccountPath)
		}
		c.serviceAccount = string(key)
	}

	return c, nil
}

// serviceAccountKey is the structure of a GCP service account JSON key
type serviceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`
}

// tokenResponse is the OAuth2 token response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// authenticate obtains an access token for the service account
func (c *GCPCollector) authenticate(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	if c.serviceAccount == "" {
		if token := os.Getenv("GOOGLE_OAUTH_ACCESS_TOKEN"); token != "" {
			c.token = token
			c.tokenExpiry = time.Now().Add(30 * time.Minute)
			return nil
		}
		return errors.New(errors.TypeCollect,
			"no service account key and GOOGLE_OAUTH_ACCESS_TOKEN not set")
	}

	var sa serviceAccountKey
	if err := json.Unmarshal([]byte(c.serviceAccount), &sa); err != nil {
		return errors.Collect("failed to parse service account JSON", err)
	}

	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", sa.ClientID)
	form.Set("client_secret", sa.PrivateKeyID)
	form.Set("scope", "https://www.googleapis.com/auth/cloud-billing.readonly https://www.googleapis.com/auth/cloud-platform.read-only")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return errors.Collect("failed to create auth request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Collect("failed to authenticate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.Newf(errors.TypeCollect, "authentication failed: %d %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return errors.Collect("failed to decode token response", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return nil
}

func (c *GCPCollector) getJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		method = http.MethodPost
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Collect("failed to marshal request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Collect("failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Collect("request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Collect("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.TypeCollect, "API request failed: %d %s", resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}

// bigQueryRequest is a BigQuery query request
type bigQueryRequest struct {
	Query        string `json:"query"`
	UseLegacySQL bool   `json:"useLegacySQL"`
	MaxResults   int    `json:"maxResults,omitempty"`
	TimeoutMs    int    `json:"timeoutMs,omitempty"`
}

// bigQueryResponse is a BigQuery query response
type bigQueryResponse struct {
	Schema struct {
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
	} `json:"schema"`
	Rows []struct {
		F []struct {
			V interface{} `json:"v"`
		} `json:"f"`
	} `json:"rows"`
}

// BillingRecords queries the project's BigQuery billing export for
// per-service daily costs in [start, end]. Assumes the standard export
// table layout under the billing_export dataset.
func (c *GCPCollector) BillingRecords(ctx context.Context, start, end time.Time) ([]types.BillingRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) as usage_date,
			service.description as service_name,
			project.name as project_name,
			SUM(cost) as total_cost
		FROM
			%s.billing_export.gcp_billing_export_*
		WHERE
			_TABLE_SUFFIX BETWEEN '%s' AND '%s'
		GROUP BY
			usage_date, service_name, project_name
		ORDER BY
			usage_date, service_name
	`, c.projectID, start.Format("20060102"), end.Format("20060102"))

	reqBody := bigQueryRequest{
		Query:        query,
		UseLegacySQL: false,
		MaxResults:   10000,
		TimeoutMs:    30000,
	}

	endpoint := fmt.Sprintf("https://bigquery.googleapis.com/bigquery/v2/projects/%s/queries", c.projectID)

	var queryResp bigQueryResponse
	if err := c.getJSON(ctx, endpoint, reqBody, &queryResp); err != nil {
		return nil, err
	}

	return c.parseBillingRows(&queryResp), nil
}

func (c *GCPCollector) parseBillingRows(resp *bigQueryResponse) []types.BillingRecord {
	col := map[string]int{}
	for i, f := range resp.Schema.Fields {
		col[f.Name] = i
	}

	field := func(row []struct {
		V interface{} `json:"v"`
	}, name string) (string, bool) {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		s, ok := row[idx].V.(string)
		return s, ok
	}

	now := time.Now()
	var records []types.BillingRecord
	for _, row := range resp.Rows {
		dateStr, ok := field(row.F, "usage_date")
		if !ok {
			continue
		}
		usageDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.log.Debugw("skipping row with bad date", "date", dateStr)
			continue
		}

		costStr, ok := field(row.F, "total_cost")
		if !ok {
			continue
		}
		cost, err := parseCost(costStr)
		if err != nil {
			c.log.Debugw("skipping row with bad cost", "cost", costStr)
			continue
		}

		service, _ := field(row.F, "service_name")
		project, _ := field(row.F, "project_name")

		records = append(records, types.BillingRecord{
			ServiceName: service,
			ProjectName: project,
			Cost:        cost,
			UsageDate:   usageDate,
			CollectedAt: now,
		})
	}

	c.log.Infow("collected billing records", "count", len(records))
	return records
}

// computeInstancesResponse mirrors the aggregated instance list response
type computeInstancesResponse struct {
	Items map[string]struct {
		Instances []struct {
			Name              string `json:"name"`
			ID                string `json:"id"`
			Zone              string `json:"zone"`
			Status            string `json:"status"`
			MachineType       string `json:"machineType"`
			CreationTimestamp string `json:"creationTimestamp"`
		} `json:"instances"`
		Warning *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"warning"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// Instances lists compute instances across all zones. A zone that
// fails to list is logged and skipped; one bad zone never aborts the
// collection.
func (c *GCPCollector) Instances(ctx context.Context) ([]types.Instance, error) {
	var instances []types.Instance
	pageToken := ""

	for {
		endpoint := fmt.Sprintf(
			"https://compute.googleapis.com/compute/v1/projects/%s/aggregated/instances?maxResults=500",
			c.projectID)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp computeInstancesResponse
		if err := c.getJSON(ctx, endpoint, nil, &resp); err != nil {
			return nil, err
		}

		for scope, item := range resp.Items {
			if item.Warning != nil && item.Warning.Code != "NO_RESULTS_ON_PAGE" {
				c.log.Warnw("could not list instances in scope",
					"scope", scope, "warning", item.Warning.Message)
				continue
			}
			for _, inst := range item.Instances {
				createdAt, _ := time.Parse(time.RFC3339, inst.CreationTimestamp)
				instances = append(instances, types.Instance{
					Name:        inst.Name,
					ID:          inst.ID,
					Zone:        lastSegment(inst.Zone),
					Status:      types.InstanceStatus(inst.Status),
					MachineType: inst.MachineType,
					CreatedAt:   createdAt,
				})
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.log.Infow("collected instances", "count", len(instances))
	return instances, nil
}

// assetsResponse mirrors the Cloud Asset API list response
type assetsResponse struct {
	Assets []struct {
		Name      string `json:"name"`
		AssetType string `json:"assetType"`
		Resource  *struct {
			Data map[string]interface{} `json:"data"`
		} `json:"resource"`
	} `json:"assets"`
	NextPageToken string `json:"nextPageToken"`
}

// Resources lists the project's asset inventory via the Cloud Asset API.
func (c *GCPCollector) Resources(ctx context.Context) ([]types.ResourceRecord, error) {
	var resources []types.ResourceRecord
	now := time.Now()
	pageToken := ""

	for {
		endpoint := fmt.Sprintf(
			"https://cloudasset.googleapis.com/v1/projects/%s/assets?contentType=RESOURCE&pageSize=500",
			c.projectID)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp assetsResponse
		if err := c.getJSON(ctx, endpoint, nil, &resp); err != nil {
			return nil, err
		}

		for _, a := range resp.Assets {
			record := types.ResourceRecord{
				Name:        a.Name,
				AssetType:   a.AssetType,
				ProjectID:   c.projectID,
				CollectedAt: now,
			}
			if a.Resource != nil {
				record.Data = a.Resource.Data
				record.SizeGB = sizeFromData(a.Resource.Data)
			}
			resources = append(resources, record)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.log.Infow("collected resources", "count", len(resources))
	return resources, nil
}

// sizeFromData pulls a size in GB out of a resource payload when present
func sizeFromData(data map[string]interface{}) float64 {
	for _, key := range []string{"sizeGb", "diskSizeGb", "storageBytes"} {
		v, ok := data[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			if key == "storageBytes" {
				return val / (1 << 30)
			}
			return val
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				if key == "storageBytes" {
					return f / (1 << 30)
				}
				return f
			}
		}
	}
	return 0
}

func lastSegment(s string) string {
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func parseCost(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
