package models

// DriveStatus reports whether the server-side Google Drive backend is usable.
type DriveStatus struct {
	Connected  bool   `json:"connected" yaml:"connected"`
	FolderName string `json:"folderName,omitempty" yaml:"folder_name,omitempty"`
}

// DriveFolderMimeType marks folders in a DriveFile listing.
const DriveFolderMimeType = "application/vnd.google-apps.folder"

// DriveFile is one entry of the export folder.
type DriveFile struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	MimeType     string `json:"mimeType" yaml:"mime_type"`
	ModifiedTime string `json:"modifiedTime" yaml:"modified_time"`
}

// IsFolder reports whether the entry is a Drive folder.
func (f DriveFile) IsFolder() bool { return f.MimeType == DriveFolderMimeType }

// DriveFileList wraps the files response.
type DriveFileList struct {
	Files []DriveFile `json:"files"`
}

// DriveExportResult is the response of POST /drive/export.
type DriveExportResult struct {
	Status  string `json:"status,omitempty" yaml:"status,omitempty"`
	FileID  string `json:"fileId,omitempty" yaml:"file_id,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}
