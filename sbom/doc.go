// Package sbom holds the CycloneDX document model, its load-time
// validation, and the component differ used for release comparisons.
package sbom
