// Package render substitutes {{KEY}} placeholders in template text and loads
// named templates from a template store. Placeholders without a value are left
// untouched so templates can carry optional variables.
package render
