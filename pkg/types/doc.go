/*
Package types provides the core interfaces and data structures for mediabench.

The central contract is the Provider interface: one implementation per storage
backend (S3 object store, Dropbox, Google Drive, GridFS file store, local
origin), chosen once at composition time. The benchmark engine, case selection
and the report exporter operate exclusively on these types; no SDK object ever
crosses this boundary.

Key structures:

AssetReference:
Transient identifier for a remote object, produced by listing calls and
consumed by URL resolution and uploads.

MetricRecord:
One asset's retrieval measurement (timing, payload, header overhead, heap
delta). Append-only membership in the session log; MetricColumns fixes the
report column order.

CaseType / RequiredAssets:
Case directories follow the `<type>-<identifier>` naming convention;
unrecognized prefixes default to image. The required-asset table is fixed and
total across the five types.
*/
package types
