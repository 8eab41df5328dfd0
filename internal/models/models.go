package models

// VideoDetailsRequest is the body of POST /api/download.
type VideoDetailsRequest struct {
	VideoURL string `json:"videoUrl" binding:"required"`
}

type VideoDetailsResponse struct {
	VideoDetails VideoDetails `json:"videoDetails"`
}

type VideoDetails struct {
	Title              string         `json:"title"`
	Author             string         `json:"author"`
	Thumbnail          string         `json:"thumbnail"`
	Length             int            `json:"length"`
	AvailableQualities []FormatOption `json:"availableQualities"`
	FilePath           string         `json:"filePath"`
}

// FormatOption is one downloadable encoding. Itag can be handed back on PUT to pick exactly this encoding.
type FormatOption struct {
	Quality       string `json:"quality"`
	MimeType      string `json:"mimeType"`
	ContentLength int64  `json:"contentLength"`
	Itag          int    `json:"itag"`
}

// DownloadRequest is the body of PUT /api/download.
type DownloadRequest struct {
	VideoURL string  `json:"videoUrl" binding:"required"`
	Title    *string `json:"title" binding:"required"`
	Quality  *string `json:"quality"`
	Itag     int     `json:"itag,omitempty" binding:"omitempty,min=1"`
}

// FileTitle is the title the attachment is named after. A present but empty title is allowed.
func (r *DownloadRequest) FileTitle() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

type ErrorResponse struct {
	Error string `json:"error"`
}
