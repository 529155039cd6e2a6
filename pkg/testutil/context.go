package testutil

import (
	"net/http"
	"strconv"
)

// IfMatch sets the raw If-Match header used for case version checks.
func IfMatch(req *http.Request, value string) *http.Request {
	req.Header.Set("If-Match", value)
	return req
}

// AtVersion sets If-Match to the quoted case version, the form the API
// returns in ETag.
func AtVersion(req *http.Request, version int64) *http.Request {
	return IfMatch(req, strconv.Quote(strconv.FormatInt(version, 10)))
}
