// Package validation checks raw A2UI messages against the embedded message
// schema before they reach the processor.
//
// This package is internal and should not be imported by external code.
package validation
