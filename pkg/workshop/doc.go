// Package workshop provides the Manager, which serializes access to
// workshops and runs every mutation as a scoped load, mutate, save cycle.
//
// Locks are kept per workshop ID with a reference count, so the lock map
// only holds entries for workshops that are currently in use. An optional
// ports.DistributedLocker extends the serialization across processes.
package workshop
