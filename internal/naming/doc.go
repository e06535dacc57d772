// Package naming derives the naming-convention variants of a service name
// (PascalCase, camelCase, snake_case, UPPER_SNAKE and the protocol package
// name) and validates user-supplied service names before they are used to
// build file-system paths.
package naming
