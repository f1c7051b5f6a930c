// Package domain maps MCP tools, prompts and resources onto the reporting
// service.
//
// Each tool handler owns one report: it opens an invocation (id, span and
// log line), runs the report and returns the rendered text as content with
// the structured result alongside. Argument problems come back as tool
// errors so the model can correct its call; storage failures surface as
// handler errors.
package domain
