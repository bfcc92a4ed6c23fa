// Package forge files review issues and pull request comments on
// GitHub through its REST API.
package forge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ossreview/depgate/cloud"
	"github.com/ossreview/depgate/common"
)

const DefaultEndpoint = "https://api.github.com"

// Client works against one owner/repo pair.
type Client struct {
	rest  cloud.Client
	token string
	owner string
	repo  string
}

// NewClient builds a GitHub client for one repository. Failures are
// surfaced to the caller as-is, not retried.
func NewClient(endpoint, token, owner, repo string) (*Client, error) {
	rest, err := cloud.NewClient(endpoint)
	if err != nil {
		return nil, err
	}
	return &Client{
		rest:  rest,
		token: token,
		owner: owner,
		repo:  repo,
	}, nil
}

func (it *Client) newRequest(path string) *cloud.Request {
	request := it.rest.NewRequest(path)
	request.Headers["Authorization"] = "token " + it.token
	request.Headers["Accept"] = "application/vnd.github+json"
	request.Headers["Content-Type"] = "application/json"
	return request
}

func apiError(response *cloud.Response) error {
	return fmt.Errorf("GitHub API request failed with status %d: %s", response.Status, string(response.Body))
}

type issueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

type issueReply struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue files a new issue and returns its number.
func (it *Client) CreateIssue(title, body string, labels, assignees []string) (int, error) {
	payload, err := json.Marshal(issueRequest{
		Title:     title,
		Body:      body,
		Labels:    labels,
		Assignees: assignees,
	})
	if err != nil {
		return 0, err
	}
	request := it.newRequest(fmt.Sprintf("/repos/%s/%s/issues", it.owner, it.repo))
	request.Body = bytes.NewReader(payload)
	response := it.rest.Post(request)
	if !response.Ok() {
		return 0, apiError(response)
	}
	reply := new(issueReply)
	if err := json.Unmarshal(response.Body, reply); err != nil {
		return 0, fmt.Errorf("cannot parse issue creation reply: %w", err)
	}
	common.Debug("Created issue #%d at %s", reply.Number, reply.HTMLURL)
	return reply.Number, nil
}

type commentRequest struct {
	Body string `json:"body"`
}

// PostComment adds a comment to an existing issue or pull request.
func (it *Client) PostComment(issueNumber int, body string) error {
	payload, err := json.Marshal(commentRequest{Body: body})
	if err != nil {
		return err
	}
	request := it.newRequest(fmt.Sprintf("/repos/%s/%s/issues/%d/comments", it.owner, it.repo, issueNumber))
	request.Body = bytes.NewReader(payload)
	response := it.rest.Post(request)
	if !response.Ok() {
		return apiError(response)
	}
	return nil
}

// Issue is the subset of the issue record the approval flow reads.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   User   `json:"user"`
}

// User identifies the account that filed an issue.
type User struct {
	Login string `json:"login"`
}

// FetchIssue reads one issue, body included.
func (it *Client) FetchIssue(issueNumber int) (*Issue, error) {
	request := it.newRequest(fmt.Sprintf("/repos/%s/%s/issues/%d", it.owner, it.repo, issueNumber))
	response := it.rest.Get(request)
	if !response.Ok() {
		return nil, apiError(response)
	}
	issue := new(Issue)
	if err := json.Unmarshal(response.Body, issue); err != nil {
		return nil, fmt.Errorf("cannot parse issue reply: %w", err)
	}
	return issue, nil
}
