package gofile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Envelope is the common wrapper of every GoFile response.
type Envelope[T any] struct {
	// Status is "ok" on success.
	Status string `json:"status"`
	// Data is the endpoint payload.
	Data T `json:"data"`
}

// AccountID is the payload of accounts/getid.
type AccountID struct {
	// ID is the account identifier.
	ID string `json:"id"`
}

// Account is the payload of accounts/{id}.
type Account struct {
	// ID is the account identifier.
	ID string `json:"id"`
	// RootFolder is the id of the account root folder.
	RootFolder string `json:"rootFolder"`
}

// Content is a file or folder entry.
type Content struct {
	// ID is the content identifier.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Type is "folder" or "file".
	Type string `json:"type"`
}

// ContentTypeFolder marks folder entries.
const ContentTypeFolder = "folder"

// ContentList decodes folder children sent either as an array or as an id-keyed object.
type ContentList []*Content

// UnmarshalJSON implements json.Unmarshaler.
func (l *ContentList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil

		return nil
	}

	switch data[0] {
	case '[':
		var items []*Content
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		*l = items
	case '{':
		var byID map[string]*Content
		if err := json.Unmarshal(data, &byID); err != nil {
			return err
		}

		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		items := make([]*Content, 0, len(ids))

		for _, id := range ids {
			item := byID[id]
			if item.ID == "" {
				item.ID = id
			}

			items = append(items, item)
		}

		*l = items
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedContentsFormat, string(data[:1]))
	}

	return nil
}

// Folder is the payload of contents/{id}.
type Folder struct {
	// ID is the folder identifier.
	ID string `json:"id"`
	// Name is the folder name.
	Name string `json:"name"`
	// Contents lists folder children in older API versions.
	Contents ContentList `json:"contents"`
	// Children lists folder children in newer API versions.
	Children ContentList `json:"children"`
}

// Entries returns every child regardless of the API version.
func (f *Folder) Entries() []*Content {
	if len(f.Children) > 0 {
		return f.Children
	}

	return f.Contents
}

// createFolderRequest is the body of contents/createFolder.
type createFolderRequest struct {
	// ParentFolderID is the folder the new one is created in.
	ParentFolderID string `json:"parentFolderId"`
	// FolderName is the new folder name.
	FolderName string `json:"folderName,omitempty"`
}

// CreatedFolder is the payload of contents/createFolder.
type CreatedFolder struct {
	// ID is the new folder identifier.
	ID string `json:"id"`
	// Name is the new folder name.
	Name string `json:"name"`
}

// UploadedFile is the payload of uploadfile.
type UploadedFile struct {
	// ID is the file identifier.
	ID string `json:"id"`
	// Name is the stored file name.
	Name string `json:"name"`
	// ParentFolder is the folder the file landed in.
	ParentFolder string `json:"parentFolder"`
	// DownloadPage is the public page of the file.
	DownloadPage string `json:"downloadPage"`
}
