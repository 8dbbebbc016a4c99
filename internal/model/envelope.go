package model

import "encoding/json"

// Envelope is the decoded JSON body of one API response. Any collection may
// be absent; absent is equivalent to empty.
type Envelope struct {
	Persons                      []Person                      `json:"persons,omitempty"`
	Relationships                []Relationship                `json:"relationships,omitempty"`
	ChildAndParentsRelationships []ChildAndParentsRelationship `json:"childAndParentsRelationships,omitempty"`
	SourceDescriptions           []SourceDescription           `json:"sourceDescriptions,omitempty"`
	Users                        []User                        `json:"users,omitempty"`
}

// ParseEnvelope decodes a raw response body into an Envelope
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// User represents an agent record from the users collection
type User struct {
	ID          string `json:"id"`
	ContactName string `json:"contactName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	TreeUserID  string `json:"treeUserId,omitempty"`
}
