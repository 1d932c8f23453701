// Package schema validates composed settings documents against an embedded
// JSON schema.
package schema
