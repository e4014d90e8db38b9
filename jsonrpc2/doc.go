/*
	Package jsonrpc2 implements a transport-agnostic JSONRPC 1.0 and 2.0
	engine.

	Message, Request and Response model the wire envelope. Decode and Encode
	convert between bytes and messages, including batches, and never perform
	I/O.

	Params is the normalized form of call parameters: positional (array) or
	named (object). The Params helpers turn scalars, optional values, tuples,
	sequences and mappings into that form and back.

	Server is a method registry keyed by method name and protocol version.
	ServePayload takes a raw inbound payload and returns the raw response
	payload, or nil when nothing needs to be sent back (notifications).

	Client generates request IDs and correlates responses with the callers
	waiting for them. Every Pending call resolves exactly once: with a
	result, an RPC error, a timeout, or a cancellation.

	Codec is the transport. Once a Codec is established, it does not care
	which side initiated the connection. Remote is a Codec, Server, and
	Client, which allows for bidirectional calls over one connection.

	When a Remote receives a call, it includes a context which contains a
	service value that can be acquired with CtxService(ctx). The service can be
	used to send calls back to the caller.
*/
package jsonrpc2
