// Package platform materializes generated files: it creates directory chains,
// writes rendered content with the right permission bits, checks for existing
// paths, and provides the symlink and recursive-copy primitives used to share
// directories between services. Permission changes are no-ops on Windows.
package platform
