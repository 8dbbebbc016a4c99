package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pmorken/kinsource/internal/model"
	"github.com/pmorken/kinsource/internal/resolve"
)

// SourceRefs fetches an entity's source references. The root collection is
// picked from the URL, so one call works for persons, couple relationships,
// and child-and-parents relationships.
func (c *Client) SourceRefs(ctx context.Context, entityURL string) (*resolve.View, error) {
	fullURL := c.apiURL(entityURL)

	root := resolve.ClassifyURL(fullURL)
	if root == "" {
		return nil, fmt.Errorf("cannot classify entity URL: %s", entityURL)
	}

	env, err := c.getEnvelope(ctx, fullURL, nil)
	if err != nil {
		return nil, err
	}

	return resolve.Resolve(env, resolve.Options{Root: root}), nil
}

// PersonSourceRefs fetches source references for one person by id
func (c *Client) PersonSourceRefs(ctx context.Context, personID string) (*resolve.View, error) {
	return c.SourceRefs(ctx, "/platform/tree/persons/"+personID+"/source-references")
}

// CoupleSourceRefs fetches source references for one couple relationship by id
func (c *Client) CoupleSourceRefs(ctx context.Context, relationshipID string) (*resolve.View, error) {
	return c.SourceRefs(ctx, "/platform/tree/couple-relationships/"+relationshipID+"/source-references")
}

// ChildAndParentsSourceRefs fetches source references for one
// child-and-parents relationship by id
func (c *Client) ChildAndParentsSourceRefs(ctx context.Context, relationshipID string) (*resolve.View, error) {
	return c.SourceRefs(ctx, "/platform/tree/child-and-parents-relationships/"+relationshipID+"/source-references")
}

// SourcesQuery fetches every entity attached to a source description and
// resolves cross-references across all three entity collections
func (c *Client) SourcesQuery(ctx context.Context, queryURL string, params url.Values) (*resolve.View, error) {
	env, err := c.getEnvelope(ctx, c.apiURL(queryURL), params)
	if err != nil {
		return nil, err
	}

	return resolve.Resolve(env, resolve.Options{IncludeDescriptions: true}), nil
}

// SourceDescription fetches a single source description by id or URL
func (c *Client) SourceDescription(ctx context.Context, idOrURL string) (*model.SourceDescription, error) {
	target := idOrURL
	if !strings.Contains(target, "/") {
		// Bare description id
		target = "/platform/sources/descriptions/" + idOrURL
	}

	env, err := c.getEnvelope(ctx, c.apiURL(target), nil)
	if err != nil {
		return nil, err
	}

	if len(env.SourceDescriptions) == 0 {
		return nil, nil
	}
	return &env.SourceDescriptions[0], nil
}

// CreateSourceDescription creates a source description and returns the URL
// of the new resource as reported by the Location header
func (c *Client) CreateSourceDescription(ctx context.Context, sd *model.SourceDescription) (string, error) {
	payload := &model.Envelope{
		SourceDescriptions: []model.SourceDescription{*sd},
	}

	resp, err := c.http.Post(ctx, c.apiURL("/platform/sources/descriptions"), payload, nil)
	if err != nil {
		return "", err
	}

	location := resp.Location()
	if location == "" {
		return "", fmt.Errorf("create succeeded but response carried no Location header")
	}
	return location, nil
}

// UpdateSourceDescription updates an existing source description in place
func (c *Client) UpdateSourceDescription(ctx context.Context, descriptionURL string, sd *model.SourceDescription) error {
	payload := &model.Envelope{
		SourceDescriptions: []model.SourceDescription{*sd},
	}

	_, err := c.http.Post(ctx, c.apiURL(descriptionURL), payload, nil)
	return err
}

// DeleteSourceDescription deletes a source description
func (c *Client) DeleteSourceDescription(ctx context.Context, descriptionURL string) error {
	_, err := c.http.Del(ctx, c.apiURL(descriptionURL), nil)
	return err
}

// DeleteSourceRef detaches a source reference from its entity
func (c *Client) DeleteSourceRef(ctx context.Context, refURL string) error {
	_, err := c.http.Del(ctx, c.apiURL(refURL), nil)
	return err
}

