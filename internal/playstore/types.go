package playstore

// AppDetails is the subset of a store listing the gateway surfaces. One
// instance exists per (package, channel) lookup; nothing is cached or shared
// across requests.
type AppDetails struct {
	PackageName       string `json:"package_name"`
	Title             string `json:"title"`
	Creator           string `json:"creator"`
	DescriptionHTML   string `json:"description_html,omitempty"`
	DeveloperName     string `json:"developer_name,omitempty"`
	DeveloperEmail    string `json:"developer_email,omitempty"`
	DeveloperWebsite  string `json:"developer_website,omitempty"`
	VersionCode       int    `json:"version_code"`
	VersionString     string `json:"version_string"`
	DownloadSize      int64  `json:"info_download_size,omitempty"`
	DownloadCount     string `json:"info_download,omitempty"`
	RecentChangesHTML string `json:"recent_changes_html,omitempty"`
	UpdatedOn         string `json:"info_updated_on,omitempty"`
	TargetSDKVersion  int    `json:"target_sdk_version,omitempty"`
}

// DeliveryData is the download manifest for one exact app version: the main
// package plus any split packages and additional (expansion) files. Every URL
// is a time-limited signed locator minted by upstream, opaque to the gateway
// and expiring on upstream's schedule.
type DeliveryData struct {
	MainURL         string
	DownloadSize    int64
	Splits          []SplitArtifact
	AdditionalFiles []FileArtifact
}

// SplitArtifact is one split package (e.g. config.arm64_v8a) of a delivery.
type SplitArtifact struct {
	Name string
	URL  string
}

// FileArtifact is one additional delivery file, typically an OBB expansion.
type FileArtifact struct {
	Name string
	URL  string
}
