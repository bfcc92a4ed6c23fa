package dtrack

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ossreview/depgate/hamlet"
	"github.com/ossreview/depgate/sbom"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "secret-key")
	if err != nil {
		t.Fatal(err)
	}
	client.sleeper = func(time.Duration) {}
	return client, server
}

func writeJSON(writer http.ResponseWriter, value interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	blob, _ := json.Marshal(value)
	writer.Write(blob)
}

func TestLookupProject(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var seenKey string
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenKey = request.Header.Get("X-Api-Key")
		if request.URL.Query().Get("version") == "v1.0.0" {
			writeJSON(writer, Project{UUID: "abc-123", Name: "widget", Version: "v1.0.0"})
			return
		}
		writer.WriteHeader(404)
	}))

	project, err := client.LookupProject("widget", "v1.0.0")
	must_be.Nil(err)
	must_be.Equal("abc-123", project.UUID)
	must_be.Equal("secret-key", seenKey)

	missing, err := client.LookupProject("widget", "v9.9.9")
	must_be.Nil(err)
	must_be.True(missing == nil)
}

func TestLookupProjectServerError(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(401)
		fmt.Fprint(writer, "unauthorized")
	}))

	project, err := client.LookupProject("widget", "v1.0.0")
	must_be.True(project == nil)
	wont_be.Nil(err)
	failure, ok := err.(*ClientError)
	must_be.True(ok)
	must_be.Equal(401, failure.Status)
	must_be.Contain("unauthorized", failure.Body)
}

func TestFetchSBOM(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	document := sbom.Empty()
	document.Components = []sbom.Component{{Type: sbom.KindLibrary, Name: "lib", Version: "1.0.0"}}
	blob, _ := json.Marshal(document)

	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case strings.HasPrefix(request.URL.Path, "/api/v1/project/lookup"):
			writeJSON(writer, Project{UUID: "abc-123", Name: "widget", Version: "v1.0.0"})
		case strings.HasPrefix(request.URL.Path, "/api/v1/bom/cyclonedx/project/abc-123"):
			writer.Write(blob)
		default:
			writer.WriteHeader(404)
		}
	}))

	fetched, err := client.FetchSBOM("widget", "v1.0.0")
	must_be.Nil(err)
	must_be.Equal(1, len(fetched.Components))
	must_be.Equal("lib", fetched.Components[0].Name)
}

func TestFetchSBOMMissingProject(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	calls := 0
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		writer.WriteHeader(404)
	}))

	fetched, err := client.FetchSBOM("widget", "v0.0.1")
	must_be.Nil(err)
	must_be.True(fetched == nil)
	must_be.Equal(1, calls)
}

func TestUploadSBOM(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var uploaded uploadRequest
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.Method == "PUT" && request.URL.Path == "/api/v1/bom":
			payload, _ := io.ReadAll(request.Body)
			json.Unmarshal(payload, &uploaded)
			writeJSON(writer, map[string]string{"token": "queued"})
		case strings.HasPrefix(request.URL.Path, "/api/v1/project/lookup"):
			writeJSON(writer, Project{UUID: "fresh-1", Name: "widget", Version: "v2.0.0"})
		default:
			writer.WriteHeader(404)
		}
	}))

	project, err := client.UploadSBOM("widget", "v2.0.0", sbom.Empty())
	must_be.Nil(err)
	must_be.Equal("fresh-1", project.UUID)
	must_be.Equal("widget", uploaded.ProjectName)
	must_be.Equal("v2.0.0", uploaded.ProjectVersion)
	must_be.True(uploaded.AutoCreate)

	decoded, err := base64.StdEncoding.DecodeString(uploaded.Bom)
	must_be.Nil(err)
	must_be.Contain("CycloneDX", string(decoded))
}

func TestUploadSBOMProjectNeverAppears(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method == "PUT" && request.URL.Path == "/api/v1/bom" {
			writeJSON(writer, map[string]string{"token": "queued"})
			return
		}
		writer.WriteHeader(404)
	}))

	project, err := client.UploadSBOM("widget", "v2.0.0", sbom.Empty())
	must_be.True(project == nil)
	wont_be.Nil(err)
	must_be.Contain("Project not found after SBOM upload", err.Error())
}

func TestComponentsPagination(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	full := make([]Component, componentPageSize)
	for index := range full {
		full[index] = Component{UUID: fmt.Sprintf("uuid-%d", index), Name: fmt.Sprintf("lib-%d", index), Version: "1.0.0"}
	}
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("pageNumber") == "1" {
			writeJSON(writer, full)
			return
		}
		writeJSON(writer, []Component{{UUID: "uuid-last", Name: "lib-last", Version: "1.0.0"}})
	}))

	components, err := client.Components("abc-123")
	must_be.Nil(err)
	must_be.Equal(componentPageSize+1, len(components))
	must_be.Equal("uuid-last", components[len(components)-1].UUID)
}

func TestSetComponentProperty(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	var stored propertyRequest
	var target string
	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case strings.HasPrefix(request.URL.Path, "/api/v1/component/project/"):
			writeJSON(writer, []Component{
				{UUID: "uuid-1", Group: "org.example", Name: "lib-scanner", Version: "2.1.0"},
				{UUID: "uuid-2", Name: "fast-json", Version: "1.5.0"},
			})
		case request.Method == "PUT" && strings.HasPrefix(request.URL.Path, "/api/v1/component/"):
			target = strings.TrimPrefix(request.URL.Path, "/api/v1/component/")
			target = strings.TrimSuffix(target, "/property")
			payload, _ := io.ReadAll(request.Body)
			json.Unmarshal(payload, &stored)
			writer.WriteHeader(200)
		default:
			writer.WriteHeader(404)
		}
	}))

	err := client.SetComponentProperty("abc-123", "", "fast-json", "1.5.0", "oss-review", "review-status", "Done")
	must_be.Nil(err)
	must_be.Equal("uuid-2", target)
	must_be.Equal("oss-review", stored.GroupName)
	must_be.Equal("review-status", stored.PropertyName)
	must_be.Equal("Done", stored.PropertyValue)
	must_be.Equal("STRING", stored.PropertyType)
}

func TestSetComponentPropertyMissingComponent(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	client, _ := testClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, []Component{})
	}))

	err := client.SetComponentProperty("abc-123", "org.example", "ghost", "0.0.1", "oss-review", "review-status", "Done")
	wont_be.Nil(err)
	must_be.Contain("org.example:ghost@0.0.1", err.Error())
}
