// Package hubspot talks to the HubSpot CRM: contact directory search, deal
// creation for accepted donations, and the confidence-weighted matching of
// extracted donor identities against directory contacts.
//
// Every operation is best-effort. An unconfigured client (empty API key) is
// a no-op and all failures are logged and non-fatal; a record that cannot
// be matched simply keeps its needs_review flag.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donorscan/internal/logger"
	"donorscan/pkg/models"
)

const defaultBaseURL = "https://api.hubapi.com"

// Client is a thin HubSpot CRM v3 REST client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client. An empty apiKey yields an unconfigured
// client whose callers should skip CRM work.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.WithComponent("hubspot"),
	}
}

// NewClientWithBaseURL creates a client against an explicit endpoint (for testing).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Contact is a directory entry returned by SearchByName.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Address   string
	City      string
	State     string
	Zip       string
}

// Name returns the contact's display name.
func (ct Contact) Name() string {
	return strings.TrimSpace(ct.FirstName + " " + ct.LastName)
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchRequest struct {
	FilterGroups []struct {
		Filters []searchFilter `json:"filters"`
	} `json:"filterGroups"`
	Properties []string `json:"properties"`
	Limit      int      `json:"limit"`
}

type searchResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
}

// SearchByName queries the contact directory. Only the first name filters
// the search (token containment); the last name influences scoring only.
func (c *Client) SearchByName(ctx context.Context, firstName, lastName string, limit int) ([]Contact, error) {
	const op = "SearchByName"

	if !c.Configured() {
		return nil, nil
	}

	req := searchRequest{
		Properties: []string{"firstname", "lastname", "address", "city", "state", "zip", "email"},
		Limit:      limit,
	}
	if firstName != "" {
		req.FilterGroups = append(req.FilterGroups, struct {
			Filters []searchFilter `json:"filters"`
		}{Filters: []searchFilter{{
			PropertyName: "firstname",
			Operator:     "CONTAINS_TOKEN",
			Value:        firstName,
		}}})
	}

	var resp searchResponse
	if err := c.post(ctx, "/crm/v3/objects/contacts/search", req, &resp); err != nil {
		return nil, fmt.Errorf("hubspot: %s: %w", op, err)
	}

	contacts := make([]Contact, 0, len(resp.Results))
	for _, result := range resp.Results {
		props := result.Properties
		contacts = append(contacts, Contact{
			ID:        result.ID,
			FirstName: props["firstname"],
			LastName:  props["lastname"],
			Email:     props["email"],
			Address:   props["address"],
			City:      props["city"],
			State:     props["state"],
			Zip:       props["zip"],
		})
	}
	return contacts, nil
}

// CreateDeal creates a closed-won donation deal for a record and associates
// it with the matched contact if one is present. Returns the deal id.
func (c *Client) CreateDeal(ctx context.Context, rec models.CheckRecord, contactID, campaignCode string) (string, error) {
	const op = "CreateDeal"

	if !c.Configured() {
		return "", nil
	}

	var amount float64
	if rec.Amount != nil {
		amount = *rec.Amount
	}
	name := "Unknown"
	if rec.Name != nil && *rec.Name != "" {
		name = *rec.Name
	}
	checkNumber := "N/A"
	if rec.CheckNumber != nil {
		checkNumber = *rec.CheckNumber
	}
	closeDate := ""
	if rec.CheckDate != nil {
		closeDate = rec.CheckDate.Format("2006-01-02")
	}

	payload := map[string]any{
		"properties": map[string]string{
			"dealname":    fmt.Sprintf("Donation - $%.2f - %s", amount, name),
			"amount":      fmt.Sprintf("%.2f", amount),
			"dealstage":   "closedwon",
			"pipeline":    "default",
			"closedate":   closeDate,
			"description": fmt.Sprintf("Campaign Code: %s\nCheck #: %s", campaignCode, checkNumber),
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/crm/v3/objects/deals", payload, &created); err != nil {
		return "", fmt.Errorf("hubspot: %s: %w", op, err)
	}

	if contactID != "" {
		if err := c.associateDealToContact(ctx, created.ID, contactID); err != nil {
			c.log.Warn().Err(err).
				Str("deal_id", created.ID).
				Str("contact_id", contactID).
				Msg("Failed to associate deal with contact")
		}
	}

	return created.ID, nil
}

func (c *Client) associateDealToContact(ctx context.Context, dealID, contactID string) error {
	url := fmt.Sprintf("%s/crm/v3/objects/deals/%s/associations/contacts/%s/deal_to_contact",
		c.baseURL, dealID, contactID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("association failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
