/*
Package domain contains the core data model of an Event Storming workshop.

It defines the persisted document (metadata, elements and bounded contexts),
the closed set of element types and the typed error kinds used across the
engine. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Document: the wire/persisted form of a workshop. Field names are the
    export/import contract and must round-trip exactly.
  - Element: a typed sticky note (event, command, actor, aggregate, policy,
    read model, external system or hotspot).
  - BoundedContext: a named grouping of elements.
  - Summary: lightweight listing record produced by stores without a full load.
*/
package domain
