package kit

import (
	"context"
	"testing"
)

func TestContext_Transport_Default(t *testing.T) {
	if v := GetTransport(context.Background()); v != "http" {
		t.Fatalf("default transport: got %q, want 'http'", v)
	}
}

func TestContext_Transport_Set(t *testing.T) {
	ctx := WithTransport(context.Background(), "mcp_quic")
	if v := GetTransport(ctx); v != "mcp_quic" {
		t.Fatalf("transport: got %q", v)
	}
}

func TestContext_SessionIdentity(t *testing.T) {
	ctx := WithSessionID(context.Background(), "quic_abc")
	ctx = WithRemoteAddr(ctx, "127.0.0.1:9999")
	ctx = WithRequestID(ctx, "req_1")

	if v := GetSessionID(ctx); v != "quic_abc" {
		t.Fatalf("session_id: got %q", v)
	}
	if v := GetRemoteAddr(ctx); v != "127.0.0.1:9999" {
		t.Fatalf("remote_addr: got %q", v)
	}
	if v := GetRequestID(ctx); v != "req_1" {
		t.Fatalf("request_id: got %q", v)
	}
}

func TestContext_EmptyDefaults(t *testing.T) {
	ctx := context.Background()
	if v := GetSessionID(ctx); v != "" {
		t.Fatalf("session_id default: got %q", v)
	}
	if v := GetRequestID(ctx); v != "" {
		t.Fatalf("request_id default: got %q", v)
	}
	if v := GetRemoteAddr(ctx); v != "" {
		t.Fatalf("remote_addr default: got %q", v)
	}
}
