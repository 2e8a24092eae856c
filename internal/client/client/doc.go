// Package client is the facegatectl side of the facegate.v1.Gate control
// API. GRPCClient manages the connection, attaches the access token to
// every call and maps gRPC status codes to sentinel errors that callers can
// match with errors.Is: ErrUnavailable, ErrUnauthorized, ErrTimeout.
package client
