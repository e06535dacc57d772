// Package doctor checks that the external tools the generator drives are
// installed and recent enough.
package doctor
