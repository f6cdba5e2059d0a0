package fittrack

import "github.com/lucasjlepore/fit-tracker/fitmsg"

// FileType classifies a FIT file by its file_id type.
type FileType string

const (
	FileTypeActivity    FileType = "activity"
	FileTypeMonitoringB FileType = "monitoring_b"
	FileTypeUnknown     FileType = "unknown"

	// FileTypeTracking is a pseudo-type for activity files recorded as
	// all-day tracking. It never comes out of ClassifyFile.
	FileTypeTracking FileType = "tracking"
)

const (
	ActivityUnknown  = "unknown"
	ActivityTracking = "All-Day Tracking"
)

// ClassifyFile returns the type of the first file_id message carrying one.
func ClassifyFile(msgs []fitmsg.Message) FileType {
	for _, m := range msgs {
		if m.Name != "file_id" {
			continue
		}
		if t, ok := m.Text("type"); ok {
			return FileType(t)
		}
	}
	return FileTypeUnknown
}

// ClassifyActivity returns the name of the first sport message carrying one.
func ClassifyActivity(msgs []fitmsg.Message) string {
	for _, m := range msgs {
		if m.Name != "sport" {
			continue
		}
		if name, ok := m.Text("name"); ok {
			return name
		}
	}
	return ActivityUnknown
}

// IsTracking reports whether the file's sport is all-day tracking.
func IsTracking(msgs []fitmsg.Message) bool {
	return ClassifyActivity(msgs) == ActivityTracking
}

// GroupType is the bucket a file's samples are plotted and archived under:
// the file type, except that all-day tracking activities become tracking.
func GroupType(msgs []fitmsg.Message) FileType {
	t := ClassifyFile(msgs)
	if t == FileTypeActivity && IsTracking(msgs) {
		return FileTypeTracking
	}
	return t
}
