// Package core holds processing options and small numeric helpers shared
// by the calcium-trace packages.
package core
