// Package notifications delivers run and batch lifecycle events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Per-category
// switches (runs, batches, errors) suppress individual event groups without
// disabling the service. Delivery failures are the caller's to log; they are
// never fatal to a pipeline run.
package notifications
