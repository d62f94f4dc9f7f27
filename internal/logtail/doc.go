// Package logtail reads the end of crownwatch's JSON log for the
// diagnostics pane.
//
// Read extracts the last N lines with a ring buffer, so memory stays
// O(maxLines) regardless of file size. Parse decodes one zap JSON line and
// Format renders it as "15:04:05 LEVEL logger: msg key=value ...". Lines that
// are not JSON pass through unchanged.
package logtail
