// Package manifest validates the Kubernetes manifests rendered for a new
// service against an embedded JSON Schema. It catches template mistakes such
// as unresolved placeholders or names that are not valid DNS labels before
// anything is applied to a cluster.
package manifest
