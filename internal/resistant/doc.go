// Package resistant detects label bouts that persist through an entire
// stimulus coverage window.
package resistant
