package apiconnect

import (
	"strings"

	"connectrpc.com/connect"
)

// withCodec puts the JSON codec first so caller options can still override it.
func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSONCodec()}, opts...)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSONCodec()}, opts...)
}

func trimSlash(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
