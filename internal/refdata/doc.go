// Package refdata provides the embedded reference tables used during
// conversion: unit aliases, gas properties for mass-to-volume
// conversion, and geography containment chains for supply-region
// fallback.
//
// All tables are compiled into the binary via go:embed so that a
// conversion run needs nothing beyond the caller-supplied metadata,
// simulation workbook, and mapping workbook.
package refdata
