package api

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/splitio/go-toolkit/v5/logging"
)

// HTTPClient structure to wrap up the net/http.Client
type HTTPClient struct {
	url        string
	httpClient *http.Client
	logger     logging.LoggerInterface
	projectID  string
}

// NewHTTPClient instance of HTTPClient
func NewHTTPClient(
	projectID string,
	endpoint string,
	timeout time.Duration,
	logger logging.LoggerInterface,
) *HTTPClient {
	client := &http.Client{Timeout: timeout}
	return &HTTPClient{
		url:        endpoint,
		httpClient: client,
		logger:     logger,
		projectID:  projectID,
	}
}

// Post performs a HTTP POST request and returns the response body. Non-2xx
// responses are returned as *dtos.HTTPError so callers can inspect the status
// code, transport failures as plain errors.
func (c *HTTPClient) Post(service string, body []byte, headers map[string]string) ([]byte, error) {
	serviceURL := c.url + service
	c.logger.Debug("[POST] ", serviceURL)
	req, _ := http.NewRequest("POST", serviceURL, bytes.NewBuffer(body))
	req.Close = true // To prevent EOF error when connection is closed

	req.Header.Add("Accept-Encoding", "gzip")
	req.Header.Add("Content-Type", "application/json")

	for headerName, headerValue := range headers {
		req.Header.Add(headerName, headerValue)
	}

	c.logger.Debug(fmt.Sprintf("Headers: %v", req.Header))

	req.Header.Add("Authorization", "Bearer "+c.projectID)

	c.logger.Verbose("[REQUEST_BODY]", string(body), "[END_REQUEST_BODY]")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Error posting data to API: ", req.URL.String(), err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	// Check that the server actually sent compressed data
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.Error(err.Error())
			return nil, err
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	respBody, err := ioutil.ReadAll(reader)
	if err != nil {
		c.logger.Error(err.Error())
		return nil, err
	}

	c.logger.Verbose("[RESPONSE_BODY]", string(respBody), "[END_RESPONSE_BODY]")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	return nil, &dtos.HTTPError{Code: resp.StatusCode, Message: resp.Status}
}
