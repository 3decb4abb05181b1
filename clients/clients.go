package clients

import (
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

// NewHTTPClient wraps an existing client, e.g. one with a custom transport.
func NewHTTPClient(c *http.Client) *HTTP { return &HTTP{c: c} }
