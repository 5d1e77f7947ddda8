/*
Package ports defines the driven ports (interfaces) for the report flow.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, report backends and hosts.

# Key Interfaces

  - FlowEngine: The session-level operations hosts (HTTP, MCP, CLI) drive.
  - Submitter: The injected submit callback that receives packaged reports.
  - StateStore: Responsible for persisting and loading sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - CatalogLoader: Produces a report-reason table from an external source.
*/
package ports
