package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// reportsEndpoint is the server path reports are posted to.
const reportsEndpoint = "/api/reports/"

// maxErrorBodySize bounds how much of an error response is echoed back
// to the caller.
const maxErrorBodySize = 2048

// RemoteReport is the server's handle for an uploaded report.
type RemoteReport struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Client talks to the remote report server. Transport-level reliability
// (retries, backoff) is delegated to retryablehttp; this client only
// shapes the payload and interprets the response.
type Client struct {
	baseURL    string
	token      string
	http       *retryablehttp.Client
	orgStyling bool
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithOrgStyling marks the account as an organization account, which
// changes how formatting CSS is framed in the upload payload. Threaded
// explicitly instead of read from ambient session config.
func WithOrgStyling() ClientOption {
	return func(c *Client) { c.orgStyling = true }
}

// WithRetryMax sets the maximum number of transport retries.
func WithRetryMax(n int) ClientOption {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// NewClient creates a Client for the server at baseURL authenticating
// with token.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		http:      rc,
		userAgent: "go-report",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// styleHeader frames formatting CSS the way the server expects:
// organization accounts receive a full <style> element, individual
// accounts raw CSS.
func (c *Client) styleHeader(f *Formatting) string {
	css := f.ToCSS()
	if c.orgStyling {
		return "<style type=\"text/css\">\n" + css + "\n</style>"
	}
	return css
}

// uploadReport posts the document and its attachments as
// multipart/form-data and decodes the server's report handle.
func (c *Client) uploadReport(ctx context.Context, document string, attachments []Attachment, fields map[string]string, tags []string) (*RemoteReport, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// Deterministic field order keeps request payloads reproducible.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("%w: encoding field %s: %v", ErrUpload, k, err)
		}
	}
	for _, tag := range tags {
		if err := mw.WriteField("tags", tag); err != nil {
			return nil, fmt.Errorf("%w: encoding tags: %v", ErrUpload, err)
		}
	}

	if err := mw.WriteField("document", document); err != nil {
		return nil, fmt.Errorf("%w: encoding document: %v", ErrUpload, err)
	}

	for _, att := range attachments {
		if err := writeAttachmentPart(mw, att); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalizing payload: %v", ErrUpload, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.baseURL+reportsEndpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: server returned %s: %s", ErrUpload, resp.Status, strings.TrimSpace(string(msg)))
	}

	var remote RemoteReport
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpload, err)
	}
	return &remote, nil
}

// writeAttachmentPart streams one compressed attachment into the
// multipart body under its document reference name.
func writeAttachmentPart(mw *multipart.Writer, att Attachment) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="attachments"; filename=%q`, att.Name))
	header.Set("Content-Type", att.MIME)
	header.Set("Content-Encoding", "gzip")

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("%w: encoding attachment %s: %v", ErrUpload, att.Name, err)
	}

	f, err := os.Open(att.Path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrAssetWrite, att.Path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrAssetWrite, att.Path, err)
	}
	return nil
}
