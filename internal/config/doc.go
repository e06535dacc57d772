// Package config loads project settings for the generator: the argv of every
// external tool it drives, per-tool timeouts, image coordinates, container
// publishing and minimum tool versions.
//
// Values come from built-in defaults, the project config file
// (svcforge.yaml), a project .env file and SVCFORGE_* environment variables,
// in increasing order of precedence. The merged result is validated before
// use.
package config
