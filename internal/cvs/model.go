package cvs

import "time"

// CV is stored file metadata; the bytes themselves live in the blob store
// at the key embedded in URL.
type CV struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
