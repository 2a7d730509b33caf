package models

// VersionRecord is one reported match: a file or archive entry whose name
// matched a target, together with the version strings read from its
// resources. Either version string may be empty when the binary carries no
// version resource.
type VersionRecord struct {
	Path           string `json:"path"`
	ProductVersion string `json:"product_version"`
	FileVersion    string `json:"file_version"`
}
