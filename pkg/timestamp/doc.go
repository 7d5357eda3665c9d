// Package timestamp extracts candidate timestamps of a photo file from its
// name, its filesystem attributes and its EXIF block.
//
// Filename patterns are tried in a fixed priority order (WhatsApp, then
// screenshot). Which filesystem attribute counts as "created" depends on the
// platform, see AttributeMapFor.
package timestamp
