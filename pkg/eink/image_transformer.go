package eink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/eink-client/internal/constants"
)

// ImageTransformerDetails is the state of an image transformer. Fields the
// server sends beyond the known ones are kept in Extra and sent back on Update.
type ImageTransformerDetails struct {
	ID            string                 `json:"id"            yaml:"id"`
	Description   string                 `json:"description"   yaml:"description"`
	Active        bool                   `json:"active"        yaml:"active"`
	Position      int                    `json:"position"      yaml:"position"`
	Configuration map[string]interface{} `json:"configuration" yaml:"configuration"`
	Extra         map[string]interface{} `json:"-"             yaml:"extra,omitempty"`
}

type plainTransformerDetails ImageTransformerDetails

var transformerDetailsFields = []string{"id", "description", "active", "position", "configuration"}

// UnmarshalJSON accepts string or numeric ids and collects unknown fields into Extra.
func (d *ImageTransformerDetails) UnmarshalJSON(data []byte) error {
	var decoded struct {
		plainTransformerDetails
		ID json.RawMessage `json:"id"`
	}

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}

	details := ImageTransformerDetails(decoded.plainTransformerDetails)

	if len(decoded.ID) > 0 && string(decoded.ID) != "null" {
		var id json.Number

		err = json.Unmarshal(decoded.ID, &id)
		if err != nil {
			var str string

			err = json.Unmarshal(decoded.ID, &str)
			if err != nil {
				return fmt.Errorf("image transformer id: %w", err)
			}

			id = json.Number(str)
		}

		details.ID = id.String()
	}

	var extra map[string]interface{}

	err = json.Unmarshal(data, &extra)
	if err != nil {
		return err
	}

	for _, field := range transformerDetailsFields {
		delete(extra, field)
	}

	if len(extra) > 0 {
		details.Extra = extra
	}

	*d = details

	return nil
}

// MarshalJSON writes the known fields over Extra.
func (d ImageTransformerDetails) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(plainTransformerDetails(d))
	if err != nil {
		return nil, err
	}

	if len(d.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]interface{}, len(d.Extra)+len(transformerDetailsFields))
	for key, value := range d.Extra {
		merged[key] = value
	}

	var fields map[string]json.RawMessage

	err = json.Unmarshal(known, &fields)
	if err != nil {
		return nil, err
	}

	for key, value := range fields {
		merged[key] = value
	}

	return json.Marshal(merged)
}

// ImageTransformerKey identifies a transformer across displays.
type ImageTransformerKey struct {
	DisplayID          string
	ImageTransformerID string
}

// ImageTransformer is a processing step applied to a display's images.
type ImageTransformer struct {
	client        *APIClient
	displayID     string
	transformerID string
}

// NewImageTransformer returns a record for transformerID on displayID. No request is made.
func NewImageTransformer(client *APIClient, displayID, transformerID string) (ImageTransformer, error) {
	if !validAPIClient(client) {
		return ImageTransformer{}, ErrInvalidAPIClient
	}

	if displayID == "" {
		return ImageTransformer{}, fmt.Errorf("display: %w", ErrEmptyID)
	}

	if transformerID == "" {
		return ImageTransformer{}, fmt.Errorf("image transformer: %w", ErrEmptyID)
	}

	return ImageTransformer{client: client, displayID: displayID, transformerID: transformerID}, nil
}

// DisplayID returns the owning display's identifier.
func (t ImageTransformer) DisplayID() string {
	return t.displayID
}

// ImageTransformerID returns the transformer identifier.
func (t ImageTransformer) ImageTransformerID() string {
	return t.transformerID
}

// Key returns the (display, transformer) pair identifying the transformer.
func (t ImageTransformer) Key() ImageTransformerKey {
	return ImageTransformerKey{DisplayID: t.displayID, ImageTransformerID: t.transformerID}
}

// Equal reports whether both records name the same transformer on the same display.
func (t ImageTransformer) Equal(other ImageTransformer) bool {
	return t.Key() == other.Key()
}

// Details fetches the transformer's current state.
func (t ImageTransformer) Details(ctx context.Context) (*ImageTransformerDetails, error) {
	resp, err := t.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       constants.APIPathDisplayImageTransformer,
		PathParams: t.pathParams(),
	})
	if err != nil {
		return nil, fmt.Errorf("getting image transformer: %w", err)
	}

	details, err := HandleResponse(resp, Handlers[*ImageTransformerDetails]{
		OnSuccess: func(resp *Response) (*ImageTransformerDetails, error) {
			var details ImageTransformerDetails

			err := resp.Decode(&details)
			if err != nil {
				return nil, err
			}

			return &details, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting image transformer: %w", err)
	}

	return details, nil
}

// Update replaces the transformer's state.
func (t ImageTransformer) Update(ctx context.Context, details *ImageTransformerDetails) error {
	if details == nil {
		return fmt.Errorf("updating image transformer: %w", ErrDetailsRequired)
	}

	resp, err := t.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodPut,
		Path:       constants.APIPathDisplayImageTransformer,
		PathParams: t.pathParams(),
		Body:       details,
	})
	if err != nil {
		return fmt.Errorf("updating image transformer: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("updating image transformer: %w", err)
	}

	return nil
}

func (t ImageTransformer) pathParams() map[string]string {
	return map[string]string{
		constants.ParamDisplayID:          t.displayID,
		constants.ParamImageTransformerID: t.transformerID,
	}
}
