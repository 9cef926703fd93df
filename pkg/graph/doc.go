/*
Package graph is the in-memory model of a single Event Storming workshop.

A Graph holds the elements, one canonical set of trigger edges and the
bounded contexts of a workshop. Every mutation validates its input against
the current graph first and only then applies, so a rejected call leaves the
graph untouched. The persisted triggers and triggered_by lists are two views
derived from the same edge set when the graph is materialized with Document,
which keeps them symmetric by construction.

FromDocument rebuilds a graph from a stored or imported document after
Validate has checked every invariant:

  - element and context IDs are unique;
  - edges only reference existing elements and both views agree;
  - context membership is recorded consistently on both sides;
  - element types belong to the closed set.

Self-loops are structurally allowed. Analysis code reports them separately.
*/
package graph
