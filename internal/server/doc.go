// Package server implements the MCP (Model Context Protocol) server for the
// color matching tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the average-color
// matching pipeline through the MCP protocol, so MCP-compatible clients can
// inspect images, compute averages, and run matches interactively.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Color Matching:
//   - color_average: Average color with optional mask and region
//   - color_match: Match one target to one reference, write the output
//   - color_match_batch: Match directory or list pairs in order
//
// Settings:
//   - config_get: Read persisted settings
//   - config_set: Update persisted settings
//
// # Logging
//
// Stdout carries the protocol; all logging goes to stderr.
package server
