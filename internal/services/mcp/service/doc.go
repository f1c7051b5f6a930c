// Package service wires protocol transport to the reporting domain.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or Streamable HTTP and delegates report meaning to the handlers in
// the MCP domain package.
package service
