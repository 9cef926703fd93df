/*
Package observability provides the Prometheus metrics of the eventstorm engine.

Metrics are registered on a caller supplied registry so tests and embedding
programs never collide on the global default registry. A nil *Metrics is
valid and records nothing.
*/
package observability
