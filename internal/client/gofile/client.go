package gofile

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/qobuz-grabber/internal/config"
	http_transport "github.com/oshokin/qobuz-grabber/internal/transport/http"
	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// Client defines the interface for interacting with the GoFile API.
type Client interface {
	// CreateFolder creates a folder under parentID and returns its id.
	CreateFolder(ctx context.Context, parentID, name string) (string, error)
	// FolderLink returns the public share link of a folder.
	FolderLink(folderID string) string
	// GetAccountID returns the id of the account owning the token.
	GetAccountID(ctx context.Context) (string, error)
	// GetFolderContents lists the children of a folder.
	GetFolderContents(ctx context.Context, folderID string) ([]*Content, error)
	// GetRootFolder returns the root folder id of an account.
	GetRootFolder(ctx context.Context, accountID string) (string, error)
	// UploadFile uploads a local file into a folder.
	UploadFile(ctx context.Context, folderID, filePath string) (*UploadedFile, error)
}

// ClientImpl implements the Client interface for interacting with the GoFile API.
type ClientImpl struct {
	// apiBaseURL is the base URL of metadata endpoints.
	apiBaseURL string
	// uploadURL is the upload endpoint.
	uploadURL string
	// shareBaseURL is the base of public folder links.
	shareBaseURL string
	// httpClient is the HTTP client for API requests.
	httpClient *http.Client
}

const (
	// defaultAPIBaseURL is the GoFile metadata API.
	defaultAPIBaseURL = "https://api.gofile.io"
	// defaultUploadURL is the GoFile upload endpoint.
	defaultUploadURL = "https://upload.gofile.io/uploadfile"
	// defaultShareBaseURL is the base of public folder links.
	defaultShareBaseURL = "https://gofile.io/d/"
	// statusOK is the success status of every response.
	statusOK = "ok"
	// authorizationHeader carries the account bearer token.
	authorizationHeader = "Authorization"
)

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	token := strings.TrimSpace(cfg.GoFile.Token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	// Uploads can be large, the delivery timeout bounds them through the context.
	httpClient := &http.Client{
		Transport: http_transport.NewHeaderInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			utils.NewStaticHeaderProvider(map[string]string{
				http_transport.UserAgentHeader: http_transport.DefaultUserAgent,
				authorizationHeader:            "Bearer " + token,
			})),
	}

	return &ClientImpl{
		apiBaseURL:   defaultAPIBaseURL,
		uploadURL:    defaultUploadURL,
		shareBaseURL: defaultShareBaseURL,
		httpClient:   httpClient,
	}, nil
}

// GetAccountID returns the id of the account owning the token.
func (c *ClientImpl) GetAccountID(ctx context.Context) (string, error) {
	result, err := doJSON[AccountID](c, ctx, http.MethodGet, "accounts/getid", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get account id: %w", err)
	}

	return result.ID, nil
}

// GetRootFolder returns the root folder id of an account.
func (c *ClientImpl) GetRootFolder(ctx context.Context, accountID string) (string, error) {
	result, err := doJSON[Account](c, ctx, http.MethodGet, "accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to get root folder: %w", err)
	}

	return result.RootFolder, nil
}

// GetFolderContents lists the children of a folder.
func (c *ClientImpl) GetFolderContents(ctx context.Context, folderID string) ([]*Content, error) {
	result, err := doJSON[Folder](c, ctx, http.MethodGet, "contents/"+url.PathEscape(folderID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
	}

	return result.Entries(), nil
}

// CreateFolder creates a folder under parentID and returns its id.
func (c *ClientImpl) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	payload := &createFolderRequest{
		ParentFolderID: parentID,
		FolderName:     name,
	}

	result, err := doJSON[CreatedFolder](c, ctx, http.MethodPost, "contents/createFolder", payload)
	if err != nil {
		return "", fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	return result.ID, nil
}

// UploadFile uploads a local file into a folder.
// The multipart body is streamed so large files are never held in memory.
func (c *ClientImpl) UploadFile(ctx context.Context, folderID, filePath string) (*UploadedFile, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	bodyReader, bodyWriter := io.Pipe()
	multipartWriter := multipart.NewWriter(bodyWriter)

	go func() {
		bodyWriter.CloseWithError(writeUploadBody(multipartWriter, folderID, filePath, file))
	}()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bodyReader)
	if err != nil {
		bodyReader.Close() //nolint:errcheck,gosec // Unblocks the writer goroutine.

		return nil, err
	}

	request.Header.Set("Content-Type", multipartWriter.FormDataContentType())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filepath.Base(filePath), err)
	}

	defer response.Body.Close()

	result, err := decodeEnvelope[UploadedFile](response)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filepath.Base(filePath), err)
	}

	return result, nil
}

// FolderLink returns the public share link of a folder.
func (c *ClientImpl) FolderLink(folderID string) string {
	return c.shareBaseURL + folderID
}

// writeUploadBody writes the multipart form of an upload.
func writeUploadBody(w *multipart.Writer, folderID, filePath string, file io.Reader) error {
	if err := w.WriteField("folderId", folderID); err != nil {
		return err
	}

	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}

	if _, err = io.Copy(part, file); err != nil {
		return err
	}

	return w.Close()
}

// doJSON performs a JSON API call and unwraps the response envelope.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func doJSON[T any](c *ClientImpl, ctx context.Context, method, uri string, payload any) (*T, error) {
	route, err := url.JoinPath(c.apiBaseURL, uri)
	if err != nil {
		return nil, err
	}

	body := io.Reader(http.NoBody)

	if payload != nil {
		encoded, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, marshalErr
		}

		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, route, body)
	if err != nil {
		return nil, err
	}


	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	return decodeEnvelope[T](response)
}

// decodeEnvelope checks the HTTP and API status of a response and returns its payload.
func decodeEnvelope[T any](response *http.Response) (*T, error) {
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var envelope Envelope[T]
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Status != statusOK {
		return nil, fmt.Errorf("%w: %q", ErrStatusNotOK, envelope.Status)
	}

	return &envelope.Data, nil
}
