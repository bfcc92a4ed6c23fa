// Package dtrack talks to a Dependency-Track server: project lookup,
// SBOM download and upload, and component property updates.
package dtrack

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ossreview/depgate/cloud"
	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/sbom"
)

const (
	lookupAPI    = "/api/v1/project/lookup"
	bomAPI       = "/api/v1/bom"
	projectBOM   = "/api/v1/bom/cyclonedx/project/%s"
	componentAPI = "/api/v1/component/project/%s"
	propertyAPI  = "/api/v1/component/%s/property"

	componentPageSize = 500

	// Dependency-Track processes uploads asynchronously, so a fresh
	// project is not queryable immediately after its first upload.
	uploadSettleDelay = 3 * time.Second
)

// ClientError is a non-2xx answer from the server.
type ClientError struct {
	Status int
	Body   string
}

func (it *ClientError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", it.Status, it.Body)
}

func serverError(response *cloud.Response) error {
	return &ClientError{Status: response.Status, Body: string(response.Body)}
}

// Project is the server side identity of one uploaded SBOM.
type Project struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Component is the server side record of one project component.
type Component struct {
	UUID    string `json:"uuid"`
	Group   string `json:"group,omitempty"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Client struct {
	rest    cloud.Client
	apiKey  string
	sleeper func(time.Duration)
}

// NewClient builds a Dependency-Track client on the given endpoint.
// Server side and transport failures are retried.
func NewClient(endpoint, apiKey string) (*Client, error) {
	rest, err := cloud.NewClient(endpoint)
	if err != nil {
		return nil, err
	}
	return &Client{
		rest:    rest.WithRetries(),
		apiKey:  apiKey,
		sleeper: time.Sleep,
	}, nil
}

func (it *Client) newRequest(path string) *cloud.Request {
	request := it.rest.NewRequest(path)
	request.Headers["X-Api-Key"] = it.apiKey
	return request
}

// LookupProject finds one project by name and version. A missing
// project is not an error, the result is just nil.
func (it *Client) LookupProject(name, version string) (*Project, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("version", version)
	request := it.newRequest(fmt.Sprintf("%s?%s", lookupAPI, query.Encode()))
	response := it.rest.Get(request)
	if response.Status == 404 {
		return nil, nil
	}
	if !response.Ok() {
		return nil, serverError(response)
	}
	project := new(Project)
	if err := json.Unmarshal(response.Body, project); err != nil {
		return nil, fmt.Errorf("cannot parse project lookup reply: %w", err)
	}
	return project, nil
}

// FetchSBOM downloads the CycloneDX document of the named project
// version. Both a missing project and a project without an SBOM come
// back as (nil, nil).
func (it *Client) FetchSBOM(projectName, version string) (*sbom.SBOM, error) {
	project, err := it.LookupProject(projectName, version)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	request := it.newRequest(fmt.Sprintf(projectBOM, project.UUID))
	request.Headers["Accept"] = "application/vnd.cyclonedx+json"
	response := it.rest.Get(request)
	if response.Status == 404 {
		return nil, nil
	}
	if !response.Ok() {
		return nil, serverError(response)
	}
	return sbom.Parse(response.Body, fmt.Sprintf("%s %s", projectName, version))
}

type uploadRequest struct {
	ProjectName    string `json:"projectName"`
	ProjectVersion string `json:"projectVersion"`
	AutoCreate     bool   `json:"autoCreate"`
	Bom            string `json:"bom"`
}

// UploadSBOM sends the document to the server, creating the project
// version when it does not exist yet, and returns the settled project
// record.
func (it *Client) UploadSBOM(projectName, version string, document *sbom.SBOM) (*Project, error) {
	blob, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("cannot serialize SBOM for upload: %w", err)
	}
	payload, err := json.Marshal(uploadRequest{
		ProjectName:    projectName,
		ProjectVersion: version,
		AutoCreate:     true,
		Bom:            base64.StdEncoding.EncodeToString(blob),
	})
	if err != nil {
		return nil, err
	}
	request := it.newRequest(bomAPI)
	request.Headers["Content-Type"] = "application/json"
	request.Body = bytes.NewReader(payload)
	response := it.rest.Put(request)
	if !response.Ok() {
		return nil, serverError(response)
	}
	common.Debug("SBOM upload accepted for %s %s, waiting for processing.", projectName, version)

	it.sleeper(uploadSettleDelay)

	project, err := it.LookupProject(projectName, version)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("Project not found after SBOM upload: %s %s", projectName, version)
	}
	return project, nil
}

// Components lists every component of one project, following the
// server side pagination.
func (it *Client) Components(projectUUID string) ([]Component, error) {
	collected := []Component{}
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("pageNumber", fmt.Sprintf("%d", page))
		query.Set("pageSize", fmt.Sprintf("%d", componentPageSize))
		request := it.newRequest(fmt.Sprintf(componentAPI, projectUUID) + "?" + query.Encode())
		response := it.rest.Get(request)
		if !response.Ok() {
			return nil, serverError(response)
		}
		var batch []Component
		if err := json.Unmarshal(response.Body, &batch); err != nil {
			return nil, fmt.Errorf("cannot parse component listing: %w", err)
		}
		collected = append(collected, batch...)
		if len(batch) < componentPageSize {
			return collected, nil
		}
	}
}

type propertyRequest struct {
	GroupName     string `json:"groupName"`
	PropertyName  string `json:"propertyName"`
	PropertyValue string `json:"propertyValue"`
	PropertyType  string `json:"propertyType"`
}

// SetComponentProperty stores one string property on the component
// matching the exact group, name and version triple.
func (it *Client) SetComponentProperty(projectUUID, group, name, version, propertyGroup, propertyName, propertyValue string) error {
	components, err := it.Components(projectUUID)
	if err != nil {
		return err
	}
	target := ""
	for _, component := range components {
		if component.Group == group && component.Name == name && component.Version == version {
			target = component.UUID
			break
		}
	}
	if len(target) == 0 {
		full := name
		if len(group) > 0 {
			full = group + ":" + name
		}
		return fmt.Errorf("component not found in project: %s@%s", full, version)
	}
	payload, err := json.Marshal(propertyRequest{
		GroupName:     propertyGroup,
		PropertyName:  propertyName,
		PropertyValue: propertyValue,
		PropertyType:  "STRING",
	})
	if err != nil {
		return err
	}
	request := it.newRequest(fmt.Sprintf(propertyAPI, target))
	request.Headers["Content-Type"] = "application/json"
	request.Body = bytes.NewReader(payload)
	response := it.rest.Put(request)
	if !response.Ok() {
		return serverError(response)
	}
	return nil
}
