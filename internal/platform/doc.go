// Package platform contains reference classification, filesystem helpers
// for the output directory, and the native playlist lister built on the
// ytdlp library.
package platform
