package forge

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ossreview/depgate/hamlet"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "ghp_testing", "octo-org", "widget")
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestCreateIssue(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var path, auth string
	var received issueRequest
	client := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path = request.URL.Path
		auth = request.Header.Get("Authorization")
		payload, _ := io.ReadAll(request.Body)
		json.Unmarshal(payload, &received)
		writer.WriteHeader(201)
		fmt.Fprint(writer, `{"number": 42, "html_url": "https://github.com/octo-org/widget/issues/42"}`)
	}))

	number, err := client.CreateIssue("[Review] OSS usage review v1.1.0", "body text", []string{"oss-review"}, []string{"octocat"})
	must_be.Nil(err)
	must_be.Equal(42, number)
	must_be.Equal("/repos/octo-org/widget/issues", path)
	must_be.Equal("token ghp_testing", auth)
	must_be.Equal("[Review] OSS usage review v1.1.0", received.Title)
	must_be.Equal([]string{"oss-review"}, received.Labels)
	must_be.Equal([]string{"octocat"}, received.Assignees)
}

func TestCreateIssueFailure(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	client := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(422)
		fmt.Fprint(writer, `{"message": "Validation Failed"}`)
	}))

	number, err := client.CreateIssue("title", "body", nil, nil)
	must_be.Equal(0, number)
	wont_be.Nil(err)
	must_be.Contain("status 422", err.Error())
	must_be.Contain("Validation Failed", err.Error())
}

func TestServerErrorsAreSurfacedNotRetried(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	calls := 0
	client := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		writer.WriteHeader(502)
		fmt.Fprint(writer, "bad gateway")
	}))

	_, err := client.CreateIssue("title", "body", nil, nil)
	wont_be.Nil(err)
	must_be.Contain("status 502", err.Error())
	must_be.Equal(1, calls)
}

func TestPostComment(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var path string
	var received commentRequest
	client := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path = request.URL.Path
		payload, _ := io.ReadAll(request.Body)
		json.Unmarshal(payload, &received)
		writer.WriteHeader(201)
		fmt.Fprint(writer, `{"id": 1}`)
	}))

	err := client.PostComment(7, "No differences from the previous release were detected.")
	must_be.Nil(err)
	must_be.Equal("/repos/octo-org/widget/issues/7/comments", path)
	must_be.Equal("No differences from the previous release were detected.", received.Body)
}

func TestFetchIssue(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	client := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `{"number": 42, "title": "[Review] OSS usage review v1.1.0", "body": "- [x] Done", "user": {"login": "octocat"}}`)
	}))

	issue, err := client.FetchIssue(42)
	must_be.Nil(err)
	must_be.Equal(42, issue.Number)
	must_be.Equal("octocat", issue.User.Login)
	must_be.Contain("Done", issue.Body)
}
