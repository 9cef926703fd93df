/*
Package ports defines the driven ports (interfaces) of the eventstorm engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends and lock providers.

# Key Interfaces

  - WorkshopStore: persists and loads workshop documents (file, memory, redis, sqlite).
  - DistributedLocker: serializes writers to the same workshop across processes.
  - Board: exports a workshop as a set of cards (loam).

RunWorkshopStoreContract is a reusable suite every WorkshopStore must pass.
*/
package ports
