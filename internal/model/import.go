package model

// ImportResult summarises a bulk import. Rows that fail do not roll back the others.
type ImportResult struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// UploadResult describes a stored asset.
type UploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
