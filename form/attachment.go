package form

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

var ErrBadDataURL = errors.New("attachment is not a valid data url")

// Attachment is a file picked in the form. It lives as a data URL for
// preview until the form is submitted.
type Attachment struct {
	FileName string `json:"fileName"`
	DataURL  string `json:"dataUrl"`
}

// Uploader stores a file and returns its canonical URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Committer is implemented by uploaders that track whether an upload ended
// up referenced by a saved entity.
type Committer interface {
	Commit(ctx context.Context, urls []string) error
}

// attachmentOf recognises an attachment in a field value. Plain strings
// that are not data URLs are already-uploaded URLs and are left alone.
func attachmentOf(v any) (Attachment, bool) {
	switch a := v.(type) {
	case Attachment:
		return a, a.DataURL != ""
	case *Attachment:
		if a == nil {
			return Attachment{}, false
		}
		return *a, a.DataURL != ""
	case map[string]any:
		data, _ := a["dataUrl"].(string)
		name, _ := a["fileName"].(string)
		if data == "" {
			return Attachment{}, false
		}
		return Attachment{FileName: name, DataURL: data}, true
	case string:
		if strings.HasPrefix(a, "data:") {
			return Attachment{DataURL: a}, true
		}
	}
	return Attachment{}, false
}

// Decode returns the bytes and a file name for the attachment.
func (a Attachment) Decode(fallbackName string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(a.DataURL, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}

	var data []byte
	var err error
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}

	name := a.FileName
	if name == "" {
		name = fallbackName
		if exts, _ := mime.ExtensionsByType(strings.SplitN(mediaType, ";", 2)[0]); len(exts) > 0 {
			name += exts[0]
		}
	}
	return name, data, nil
}
