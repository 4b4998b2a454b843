/*
Package ports defines the driven ports (interfaces) for the plotting core.

These interfaces decouple the HTTP and MCP surfaces from the backends that
store rendered plots, so the same handlers run against an in-process map or a
shared Redis instance.

# Key Interfaces

  - RenderCache: stores encoded plot images keyed by a request digest.
*/
package ports
