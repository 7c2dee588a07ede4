package eink

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/eink-client/internal/constants"
)

// ImageRef is anything that names an image: an Image record or a bare ImageID.
type ImageRef interface {
	ImageID() string
}

// ImageID is a bare image identifier.
type ImageID string

// ImageID implements ImageRef.
func (id ImageID) ImageID() string {
	return string(id)
}

// ImageKey identifies an image across displays.
type ImageKey struct {
	DisplayID string
	ImageID   string
}

// ImageFile is image content with its media type.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Image is an image stored on a display. Obtain one from NewImage or a
// collection; requests on the zero value fail with ErrInvalidAPIClient.
type Image struct {
	client    *APIClient
	displayID string
	imageID   string
}

// NewImage returns a record for imageID on displayID. No request is made.
func NewImage(client *APIClient, displayID, imageID string) (Image, error) {
	if !validAPIClient(client) {
		return Image{}, ErrInvalidAPIClient
	}

	if displayID == "" {
		return Image{}, fmt.Errorf("display: %w", ErrEmptyID)
	}

	if imageID == "" {
		return Image{}, fmt.Errorf("image: %w", ErrEmptyID)
	}

	return Image{client: client, displayID: displayID, imageID: imageID}, nil
}

// DisplayID returns the owning display's identifier.
func (i Image) DisplayID() string {
	return i.displayID
}

// ImageID returns the image identifier.
func (i Image) ImageID() string {
	return i.imageID
}

// Key returns the (display, image) pair identifying the image.
func (i Image) Key() ImageKey {
	return ImageKey{DisplayID: i.displayID, ImageID: i.imageID}
}

// Equal reports whether both records name the same image on the same display.
func (i Image) Equal(other Image) bool {
	return i.Key() == other.Key()
}

// Display returns the owning display.
func (i Image) Display() Display {
	return Display{client: i.client, id: i.displayID}
}

// Data downloads the image content.
func (i Image) Data(ctx context.Context) (*ImageFile, error) {
	resp, err := i.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       constants.APIPathDisplayImageData,
		PathParams: i.pathParams(),
		Headers:    map[string]string{"Accept": constants.ContentTypeAnyImage + ", " + constants.ContentTypeOctetStream},
	})
	if err != nil {
		return nil, fmt.Errorf("getting image data: %w", err)
	}

	file, err := HandleResponse(resp, Handlers[*ImageFile]{
		OnSuccess: func(resp *Response) (*ImageFile, error) {
			return &ImageFile{
				Filename:    i.imageID,
				ContentType: resp.ContentType(),
				Data:        resp.Body,
			}, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting image data: %w", err)
	}

	return file, nil
}

// SetData replaces the image content.
func (i Image) SetData(ctx context.Context, file *ImageFile) error {
	if file == nil || len(file.Data) == 0 {
		return fmt.Errorf("setting image data: %w", ErrEmptyImageData)
	}

	contentType := resolveImageContentType(
		i.client.RequestContentType(http.MethodPut, constants.APIPathDisplayImageData, "image/", constants.ContentTypeAnyImage),
		file.ContentType,
		file.Data,
	)

	resp, err := i.client.Execute(ctx, &OperationRequest{
		Method:      http.MethodPut,
		Path:        constants.APIPathDisplayImageData,
		PathParams:  i.pathParams(),
		RawBody:     file.Data,
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("setting image data: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("setting image data: %w", err)
	}

	return nil
}

// Metadata returns the image's metadata.
func (i Image) Metadata(ctx context.Context) (map[string]interface{}, error) {
	resp, err := i.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       constants.APIPathDisplayImageMetadata,
		PathParams: i.pathParams(),
	})
	if err != nil {
		return nil, fmt.Errorf("getting image metadata: %w", err)
	}

	metadata, err := HandleResponse(resp, Handlers[map[string]interface{}]{
		OnSuccess: func(resp *Response) (map[string]interface{}, error) {
			var metadata map[string]interface{}

			err := resp.Decode(&metadata)
			if err != nil {
				return nil, err
			}

			if metadata == nil {
				metadata = map[string]interface{}{}
			}

			return metadata, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting image metadata: %w", err)
	}

	return metadata, nil
}

// SetMetadata replaces the image's metadata.
func (i Image) SetMetadata(ctx context.Context, metadata map[string]interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	resp, err := i.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodPut,
		Path:       constants.APIPathDisplayImageMetadata,
		PathParams: i.pathParams(),
		Body:       metadata,
	})
	if err != nil {
		return fmt.Errorf("setting image metadata: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("setting image metadata: %w", err)
	}

	return nil
}

func (i Image) pathParams() map[string]string {
	return map[string]string{
		constants.ParamDisplayID: i.displayID,
		constants.ParamImageID:   i.imageID,
	}
}

func imageIDOf(image ImageRef) (string, error) {
	if image == nil {
		return "", fmt.Errorf("image: %w", ErrEmptyID)
	}

	imageID := image.ImageID()
	if imageID == "" {
		return "", fmt.Errorf("image: %w", ErrEmptyID)
	}

	return imageID, nil
}
