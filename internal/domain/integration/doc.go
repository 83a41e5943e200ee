// Package integration contains the domain model for external channel
// integrations: the adapter contract every marketplace/cargo/accounting
// connector must satisfy, the Integration aggregate holding a seller's
// per-channel configuration, sync logs, and product mappings.
//
// Concrete channel adapters (Trendyol, Hepsiburada, ...) live in the
// infrastructure layer; the fan-out orchestration lives in the
// application layer. This package defines only the ports and entities
// they share.
package integration
