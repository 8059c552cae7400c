package download

import (
	"encoding/base64"
	"net/url"
	"strings"

	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// decodeDataURI parses data:[<mediatype>][;base64],<data>
func decodeDataURI(ref string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "", nil, imagegen.ErrBadParameter.With("malformed data uri")
	}

	// Media type defaults as per RFC 2397
	params := strings.Split(meta, ";")
	mimetype := strings.TrimSpace(params[0])
	if mimetype == "" {
		mimetype = "text/plain"
	}
	isBase64 := false
	for _, param := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := decodeBase64(payload)
		if err != nil {
			return "", nil, imagegen.ErrBadParameter.Withf("data uri: %v", err)
		}
		return mimetype, data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, imagegen.ErrBadParameter.Withf("data uri: %v", err)
	}
	return mimetype, []byte(data), nil
}

// decodeBase64 accepts padded or unpadded standard and URL encodings, and
// ignores embedded whitespace
func decodeBase64(value string) ([]byte, error) {
	value = strings.Join(strings.Fields(value), "")
	if value == "" {
		return nil, imagegen.ErrBadParameter.With("empty data")
	}
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		var data []byte
		if data, err = enc.DecodeString(value); err == nil {
			return data, nil
		}
	}
	return nil, err
}
