package eink

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/eink-client/internal/constants"
)

// Display is a remote e-ink display. Obtain one from NewDisplay or a
// collection; requests on the zero value fail with ErrInvalidAPIClient.
type Display struct {
	client *APIClient
	id     string
}

// NewDisplay returns a record for displayID. No request is made.
func NewDisplay(client *APIClient, displayID string) (Display, error) {
	if !validAPIClient(client) {
		return Display{}, ErrInvalidAPIClient
	}

	if displayID == "" {
		return Display{}, fmt.Errorf("display: %w", ErrEmptyID)
	}

	return Display{client: client, id: displayID}, nil
}

// ID returns the display identifier.
func (d Display) ID() string {
	return d.id
}

// Equal reports whether both records name the same display.
func (d Display) Equal(other Display) bool {
	return d.id == other.id
}

// Images returns the display's image collection.
func (d Display) Images() *ImageCollection {
	return &ImageCollection{client: d.client, displayID: d.id}
}

// ImageTransformers returns the display's image transformer collection.
func (d Display) ImageTransformers() *ImageTransformerCollection {
	return &ImageTransformerCollection{client: d.client, displayID: d.id}
}

// CurrentImage returns the image being shown, or nil when none is.
func (d Display) CurrentImage(ctx context.Context) (*Image, error) {
	resp, err := d.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       constants.APIPathDisplayCurrentImage,
		PathParams: d.pathParams(),
	})
	if err != nil {
		return nil, fmt.Errorf("getting current image: %w", err)
	}

	image, err := HandleResponse(resp, Handlers[*Image]{
		OnSuccess: func(resp *Response) (*Image, error) {
			imageID, err := decodeResourceID(resp)
			if err != nil {
				return nil, err
			}

			return &Image{client: d.client, displayID: d.id, imageID: imageID}, nil
		},
		OnNotFound: SoftNotFound[*Image](),
	})
	if err != nil {
		return nil, fmt.Errorf("getting current image: %w", err)
	}

	return image, nil
}

// SetCurrentImage shows image on the display.
func (d Display) SetCurrentImage(ctx context.Context, image ImageRef) error {
	imageID, err := imageIDOf(image)
	if err != nil {
		return fmt.Errorf("setting current image: %w", err)
	}

	resp, err := d.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodPut,
		Path:       constants.APIPathDisplayCurrentImage,
		PathParams: d.pathParams(),
		Body:       map[string]string{"id": imageID},
	})
	if err != nil {
		return fmt.Errorf("setting current image: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("setting current image: %w", err)
	}

	return nil
}

// ClearCurrentImage removes the current image from the display.
func (d Display) ClearCurrentImage(ctx context.Context) error {
	resp, err := d.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodDelete,
		Path:       constants.APIPathDisplayCurrentImage,
		PathParams: d.pathParams(),
	})
	if err != nil {
		return fmt.Errorf("clearing current image: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("clearing current image: %w", err)
	}

	return nil
}

// SleepStatus reports whether the display is asleep.
func (d Display) SleepStatus(ctx context.Context) (bool, error) {
	resp, err := d.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       constants.APIPathDisplaySleep,
		PathParams: d.pathParams(),
	})
	if err != nil {
		return false, fmt.Errorf("getting sleep status: %w", err)
	}

	asleep, err := HandleResponse(resp, Handlers[bool]{
		OnSuccess: func(resp *Response) (bool, error) {
			return decodeFlag(resp, "asleep", "sleep", "sleeping")
		},
	})
	if err != nil {
		return false, fmt.Errorf("getting sleep status: %w", err)
	}

	return asleep, nil
}

// SetSleepStatus puts the display to sleep or wakes it.
func (d Display) SetSleepStatus(ctx context.Context, asleep bool) error {
	resp, err := d.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodPut,
		Path:       constants.APIPathDisplaySleep,
		PathParams: d.pathParams(),
		Body:       asleep,
	})
	if err != nil {
		return fmt.Errorf("setting sleep status: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("setting sleep status: %w", err)
	}

	return nil
}

// Sleep puts the display to sleep.
func (d Display) Sleep(ctx context.Context) error {
	return d.SetSleepStatus(ctx, true)
}

// Wake wakes the display.
func (d Display) Wake(ctx context.Context) error {
	return d.SetSleepStatus(ctx, false)
}

func (d Display) pathParams() map[string]string {
	return map[string]string{constants.ParamDisplayID: d.id}
}
