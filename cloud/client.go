package cloud

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ossreview/depgate/common"
)

const (
	// Synthetic status codes for failures without an HTTP response.
	StatusRequestFailure   = 9001
	StatusTransportFailure = 9002

	maxRetries     = 3
	firstRetryWait = 1 * time.Second
)

type internalClient struct {
	endpoint string
	client   *http.Client
	sleeper  func(time.Duration)
	retrying bool
}

type Request struct {
	Url     string
	Headers map[string]string
	Body    io.Reader
}

type Response struct {
	Status  int
	Err     error
	Body    []byte
	Elapsed common.Duration
}

// Ok tells whether the response carries a 2xx status.
func (it *Response) Ok() bool {
	return it.Status >= 200 && it.Status < 300
}

type Client interface {
	Endpoint() string
	NewRequest(string) *Request
	Get(request *Request) *Response
	Post(request *Request) *Response
	Put(request *Request) *Response
	Delete(request *Request) *Response
	WithTimeout(time.Duration) Client
	WithRetries() Client
}

func EnsureEndpoint(endpoint string) (string, error) {
	nice := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	_, err := url.Parse(nice)
	if err != nil {
		return "", err
	}
	return nice, nil
}

func NewClient(endpoint string) (Client, error) {
	nice, err := EnsureEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return &internalClient{
		endpoint: nice,
		client:   &http.Client{},
		sleeper:  time.Sleep,
		retrying: false,
	}, nil
}

func (it *internalClient) WithTimeout(timeout time.Duration) Client {
	return &internalClient{
		endpoint: it.endpoint,
		client:   &http.Client{Timeout: timeout},
		sleeper:  it.sleeper,
		retrying: it.retrying,
	}
}

// WithRetries makes server side (5xx) and transport failures retried
// with exponential backoff. Client side (4xx) failures are never
// retried, since resending a malformed request cannot succeed.
func (it *internalClient) WithRetries() Client {
	return &internalClient{
		endpoint: it.endpoint,
		client:   it.client,
		sleeper:  it.sleeper,
		retrying: true,
	}
}

func (it *internalClient) Endpoint() string {
	return it.endpoint
}

func (it *internalClient) NewRequest(url string) *Request {
	return &Request{
		Url:     url,
		Headers: make(map[string]string),
	}
}

func (it *internalClient) does(method string, request *Request) *Response {
	if !it.retrying {
		return it.attempt(method, request, request.Body)
	}
	// Body must be rewindable across attempts.
	var payload []byte
	if request.Body != nil {
		var err error
		payload, err = io.ReadAll(request.Body)
		if err != nil {
			return &Response{Status: StatusRequestFailure, Err: err}
		}
	}
	var response *Response
	for attempt := 0; attempt <= maxRetries; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		response = it.attempt(method, request, body)
		if !retryable(response) || attempt == maxRetries {
			return response
		}
		delay := firstRetryWait << attempt
		common.Log("Warning: %s %s returned %d, retrying in %v (attempt %d/%d) ...", method, request.Url, response.Status, delay, attempt+1, maxRetries)
		it.sleeper(delay)
	}
	return response
}

func retryable(response *Response) bool {
	return response.Status >= 500 || response.Status == StatusTransportFailure
}

func (it *internalClient) attempt(method string, request *Request, body io.Reader) *Response {
	stopwatch := common.Stopwatch("stopwatch")
	response := new(Response)
	url := it.Endpoint() + request.Url
	common.Trace("Doing %s %s", method, url)
	defer func() {
		response.Elapsed = stopwatch.Elapsed()
		common.Trace("%s %s took %s", method, url, response.Elapsed)
	}()
	httpRequest, err := http.NewRequest(method, url, body)
	if err != nil {
		response.Status = StatusRequestFailure
		response.Err = err
		return response
	}
	httpRequest.Header.Add("User-Agent", common.UserAgent())
	for name, value := range request.Headers {
		httpRequest.Header.Add(name, value)
	}
	httpResponse, err := it.client.Do(httpRequest)
	if err != nil {
		common.Uncritical("http.Do", err)
		response.Status = StatusTransportFailure
		response.Err = err
		return response
	}
	defer httpResponse.Body.Close()
	response.Status = httpResponse.StatusCode
	response.Body, response.Err = io.ReadAll(httpResponse.Body)
	if common.DebugFlag() {
		body := "ignore"
		if response.Status > 399 {
			body = string(response.Body)
		}
		common.Debug("%v %v => %v (%v)", method, url, response.Status, body)
	}
	return response
}

func (it *internalClient) Get(request *Request) *Response {
	return it.does("GET", request)
}

func (it *internalClient) Post(request *Request) *Response {
	return it.does("POST", request)
}

func (it *internalClient) Put(request *Request) *Response {
	return it.does("PUT", request)
}

func (it *internalClient) Delete(request *Request) *Response {
	return it.does("DELETE", request)
}
