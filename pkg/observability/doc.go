/*
Package observability turns engine lifecycle hooks into logs and Prometheus
metrics.

Both LogHooks and Metrics.Hooks return domain.LifecycleHooks, so they can be
combined with LifecycleHooks.Merge and passed to reportflow.WithLifecycleHooks.
*/
package observability
