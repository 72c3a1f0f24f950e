package models

// RecentFile is one entry of the persisted recent-files list.
type RecentFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Modified string `json:"modified"` // RFC 3339
}

// TouchRecentFileRequest moves (or adds) a path to the front of the recent list.
type TouchRecentFileRequest struct {
	Path string `json:"path"`
}

// RemoveRecentFileRequest drops an entry from the recent list.
type RemoveRecentFileRequest struct {
	ID string `json:"id"`
}

// SetWorkDirRequest persists the user's working directory.
type SetWorkDirRequest struct {
	Dir string `json:"dir"`
}
