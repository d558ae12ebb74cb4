// Package mcp implements the Model Context Protocol server that exposes Linux
// System Roles as tools.
//
// # Overview
//
// The server speaks line-delimited JSON-RPC 2.0 over stdin/stdout, the MCP
// stdio transport. Each line is one request; each answered request produces
// exactly one line. Requests are handled strictly one at a time, so
// responses are written in the order requests arrived.
//
//	MCP host (e.g. mcphost)
//	    ↓ tools/call run_system_role
//	approval gate (separate process, see package approval)
//	    ↓ approve
//	Server.Run()
//	    ↓
//	Dispatcher.Call() → roles.Runner → ansible-playbook
//
// # Methods
//
//   - initialize: protocol version, tools capability and server identity
//   - tools/list: the three tool descriptors in fixed order
//   - tools/call: resolve the tool by exact or namespace-prefixed name and run it
//   - notifications/initialized: accepted, never answered
//
// Unknown methods and notifications are ignored. Malformed lines are logged
// and produce no output.
//
// # Errors
//
// Missing or invalid tool arguments are reported as text content in a normal
// result so an LLM-driven caller can correct itself. Unknown tools, failures
// to start the playbook command, and handler panics become JSON-RPC errors
// with code -32603. A failure to write a response ends the loop.
package mcp
