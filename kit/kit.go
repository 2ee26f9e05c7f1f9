// Package kit carries small transport glue shared by markpin surfaces.
//
// An Endpoint is the transport-agnostic unit of work: the MCP transport (and
// any future one) decodes its own wire format into a typed request, then
// hands it to the same Endpoint the other transports use.
package kit

import "context"

// Endpoint is a transport-agnostic request handler.
type Endpoint func(ctx context.Context, req any) (any, error)
