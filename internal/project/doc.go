// Package project resolves the on-disk layout of a services project: the
// services/ directory holding one subdirectory per generated service, the
// shared/proto directory every service links to, and the templates/
// directory the generator renders from.
package project
