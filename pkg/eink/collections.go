package eink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/fivetwenty-io/eink-client/internal/constants"
)

// DisplayCollection is the set of displays served by the API.
type DisplayCollection struct {
	client *APIClient
}

// NewDisplayCollection returns the display collection for client.
func NewDisplayCollection(client *APIClient) (*DisplayCollection, error) {
	if !validAPIClient(client) {
		return nil, ErrInvalidAPIClient
	}

	return &DisplayCollection{client: client}, nil
}

// List returns every display.
func (c *DisplayCollection) List(ctx context.Context) ([]Display, error) {
	ids, err := list(ctx, c.client, constants.APIPathDisplays, nil, "displays")
	if err != nil {
		return nil, fmt.Errorf("listing displays: %w", err)
	}

	displays := make([]Display, 0, len(ids))
	for _, id := range ids {
		displays = append(displays, Display{client: c.client, id: id})
	}

	return displays, nil
}

// Get returns the display with displayID, or nil if it does not exist.
func (c *DisplayCollection) Get(ctx context.Context, displayID string) (*Display, error) {
	if displayID == "" {
		return nil, fmt.Errorf("getting display: %w", ErrEmptyID)
	}

	found, err := get(ctx, c.client, constants.APIPathDisplay, map[string]string{
		constants.ParamDisplayID: displayID,
	})
	if err != nil {
		return nil, fmt.Errorf("getting display: %w", err)
	}

	if !found {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	return &Display{client: c.client, id: displayID}, nil
}

// ImageCollection is the set of images stored on one display.
type ImageCollection struct {
	client    *APIClient
	displayID string
}

// NewImageCollection returns the image collection of displayID.
func NewImageCollection(client *APIClient, displayID string) (*ImageCollection, error) {
	display, err := NewDisplay(client, displayID)
	if err != nil {
		return nil, err
	}

	return display.Images(), nil
}

// DisplayID returns the owning display's identifier.
func (c *ImageCollection) DisplayID() string {
	return c.displayID
}

// List returns every image on the display.
func (c *ImageCollection) List(ctx context.Context) ([]Image, error) {
	ids, err := list(ctx, c.client, constants.APIPathDisplayImages, c.pathParams(), "images")
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	images := make([]Image, 0, len(ids))
	for _, id := range ids {
		images = append(images, c.image(id))
	}

	return images, nil
}

// Get returns the image with imageID, or nil if it does not exist.
func (c *ImageCollection) Get(ctx context.Context, imageID string) (*Image, error) {
	if imageID == "" {
		return nil, fmt.Errorf("getting image: %w", ErrEmptyID)
	}

	params := c.pathParams()
	params[constants.ParamImageID] = imageID

	found, err := get(ctx, c.client, constants.APIPathDisplayImage, params)
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}

	if !found {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	image := c.image(imageID)

	return &image, nil
}

// ImageUpload is a new image and its metadata.
type ImageUpload struct {
	// ID requests an identifier for the new image. The server may ignore it.
	ID       string
	File     ImageFile
	Metadata map[string]interface{}
}

// Add uploads a new image to the display.
func (c *ImageCollection) Add(ctx context.Context, upload *ImageUpload) (*Image, error) {
	if upload == nil || len(upload.File.Data) == 0 {
		return nil, fmt.Errorf("adding image: %w", ErrEmptyImageData)
	}

	path := constants.APIPathDisplayImages
	params := c.pathParams()

	if upload.ID != "" && c.client.Documents(http.MethodPost, constants.APIPathDisplayImage) {
		path = constants.APIPathDisplayImage
		params[constants.ParamImageID] = upload.ID
	}

	body, contentType, err := c.encodeUpload(path, upload)
	if err != nil {
		return nil, fmt.Errorf("adding image: %w", err)
	}

	resp, err := c.client.Execute(ctx, &OperationRequest{
		Method:      http.MethodPost,
		Path:        path,
		PathParams:  params,
		RawBody:     body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("adding image: %w", err)
	}

	image, err := HandleResponse(resp, Handlers[*Image]{
		OnSuccess: func(resp *Response) (*Image, error) {
			imageID, err := decodeResourceID(resp)
			if err != nil {
				imageID = upload.ID
			}

			if imageID == "" {
				return nil, ErrMissingImageID
			}

			image := c.image(imageID)

			return &image, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("adding image: %w", err)
	}

	return image, nil
}

// Delete removes an image from the display.
func (c *ImageCollection) Delete(ctx context.Context, image ImageRef) error {
	imageID, err := imageIDOf(image)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	params := c.pathParams()
	params[constants.ParamImageID] = imageID

	resp, err := c.client.Execute(ctx, &OperationRequest{
		Method:     http.MethodDelete,
		Path:       constants.APIPathDisplayImage,
		PathParams: params,
	})
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	_, err = HandleResponse(resp, Handlers[struct{}]{})
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	return nil
}

func (c *ImageCollection) encodeUpload(path string, upload *ImageUpload) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	filename := upload.File.Filename
	if filename == "" {
		filename = constants.DefaultImageFilename
	}

	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, constants.FormFieldData, filename))
	fileHeader.Set("Content-Type", resolveImageContentType(
		c.client.RequestContentType(http.MethodPost, path, "image/", constants.ContentTypeAnyImage),
		upload.File.ContentType,
		upload.File.Data,
	))

	part, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	_, err = part.Write(upload.File.Data)
	if err != nil {
		return nil, "", fmt.Errorf("writing file to form: %w", err)
	}

	metadata := upload.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, "", fmt.Errorf("encoding metadata: %w", err)
	}

	metadataHeader := make(textproto.MIMEHeader)
	metadataHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, constants.FormFieldMetadata))
	metadataHeader.Set("Content-Type", constants.ContentTypeJSON)

	part, err = writer.CreatePart(metadataHeader)
	if err != nil {
		return nil, "", fmt.Errorf("creating metadata field: %w", err)
	}

	_, err = part.Write(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("writing metadata to form: %w", err)
	}

	if upload.ID != "" {
		err = writer.WriteField(constants.FormFieldID, upload.ID)
		if err != nil {
			return nil, "", fmt.Errorf("writing id to form: %w", err)
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (c *ImageCollection) image(imageID string) Image {
	return Image{client: c.client, displayID: c.displayID, imageID: imageID}
}

func (c *ImageCollection) pathParams() map[string]string {
	return map[string]string{constants.ParamDisplayID: c.displayID}
}

// ImageTransformerCollection is the set of transformers configured on one display.
type ImageTransformerCollection struct {
	client    *APIClient
	displayID string
}

// NewImageTransformerCollection returns the transformer collection of displayID.
func NewImageTransformerCollection(client *APIClient, displayID string) (*ImageTransformerCollection, error) {
	display, err := NewDisplay(client, displayID)
	if err != nil {
		return nil, err
	}

	return display.ImageTransformers(), nil
}

// DisplayID returns the owning display's identifier.
func (c *ImageTransformerCollection) DisplayID() string {
	return c.displayID
}

// List returns every transformer on the display.
func (c *ImageTransformerCollection) List(ctx context.Context) ([]ImageTransformer, error) {
	ids, err := list(ctx, c.client, constants.APIPathDisplayImageTransformers, c.pathParams(), "transformers", "image_transformers")
	if err != nil {
		return nil, fmt.Errorf("listing image transformers: %w", err)
	}

	transformers := make([]ImageTransformer, 0, len(ids))
	for _, id := range ids {
		transformers = append(transformers, c.transformer(id))
	}

	return transformers, nil
}

// Get returns the transformer with transformerID, or nil if it does not exist.
func (c *ImageTransformerCollection) Get(ctx context.Context, transformerID string) (*ImageTransformer, error) {
	if transformerID == "" {
		return nil, fmt.Errorf("getting image transformer: %w", ErrEmptyID)
	}

	params := c.pathParams()
	params[constants.ParamImageTransformerID] = transformerID

	found, err := get(ctx, c.client, constants.APIPathDisplayImageTransformer, params)
	if err != nil {
		return nil, fmt.Errorf("getting image transformer: %w", err)
	}

	if !found {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	transformer := c.transformer(transformerID)

	return &transformer, nil
}

func (c *ImageTransformerCollection) transformer(transformerID string) ImageTransformer {
	return ImageTransformer{client: c.client, displayID: c.displayID, transformerID: transformerID}
}

func (c *ImageTransformerCollection) pathParams() map[string]string {
	return map[string]string{constants.ParamDisplayID: c.displayID}
}

// list fetches a collection and extracts its member ids. Every non-success status fails.
func list(ctx context.Context, client *APIClient, path string, params map[string]string, wrapperKeys ...string) ([]string, error) {
	resp, err := client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       path,
		PathParams: params,
	})
	if err != nil {
		return nil, err
	}

	return HandleResponse(resp, Handlers[[]string]{
		OnSuccess: func(resp *Response) ([]string, error) {
			return decodeResourceIDs(resp, wrapperKeys...)
		},
	})
}

// get reports whether the item at path exists; 404 is absence, other failures are errors.
func get(ctx context.Context, client *APIClient, path string, params map[string]string) (bool, error) {
	resp, err := client.Execute(ctx, &OperationRequest{
		Method:     http.MethodGet,
		Path:       path,
		PathParams: params,
	})
	if err != nil {
		return false, err
	}

	return HandleResponse(resp, Handlers[bool]{
		OnSuccess: func(*Response) (bool, error) {
			return true, nil
		},
		OnNotFound: SoftNotFound[bool](),
	})
}
