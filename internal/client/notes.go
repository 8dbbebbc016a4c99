package client

import (
	"context"
	"fmt"

	"github.com/pmorken/kinsource/internal/model"
)

// SourceDescriptionNotes fetches the notes attached to a source description
func (c *Client) SourceDescriptionNotes(ctx context.Context, descriptionURL string) ([]model.Note, error) {
	env, err := c.getEnvelope(ctx, c.apiURL(descriptionURL+"/notes"), nil)
	if err != nil {
		return nil, err
	}

	if len(env.SourceDescriptions) == 0 {
		return nil, nil
	}
	return env.SourceDescriptions[0].Notes, nil
}

// CreateNote attaches a note to a source description and returns the new
// note's URL from the Location header
func (c *Client) CreateNote(ctx context.Context, descriptionURL string, note *model.Note) (string, error) {
	payload := &model.Envelope{
		SourceDescriptions: []model.SourceDescription{
			{Notes: []model.Note{*note}},
		},
	}

	resp, err := c.http.Post(ctx, c.apiURL(descriptionURL+"/notes"), payload, nil)
	if err != nil {
		return "", err
	}

	location := resp.Location()
	if location == "" {
		return "", fmt.Errorf("create succeeded but response carried no Location header")
	}
	return location, nil
}

// DeleteNote removes a note
func (c *Client) DeleteNote(ctx context.Context, noteURL string) error {
	_, err := c.http.Del(ctx, c.apiURL(noteURL), nil)
	return err
}
