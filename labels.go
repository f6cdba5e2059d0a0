package fittrack

import "github.com/lucasjlepore/fit-tracker/fitmsg"

// LabelUnknown is returned when neither the file type nor the sport has a
// label.
const LabelUnknown = "unknown"

// File and sport types mapped to the short labels used in file names,
// measurement names and plot legends.
var dataTypeLabels = map[string]string{
	string(FileTypeMonitoringB): "monitor",
	"Bike":                      "cycle",
	"Cooldown":                  "cooldown",
	ActivityTracking:            "track",
	"Strength":                  "lift",
	"Walk":                      "walk",
}

// Label looks up the short label for a file type or sport name.
func Label(key string) (string, bool) {
	l, ok := dataTypeLabels[key]
	return l, ok
}

// FriendlyDataType labels a file by its file type, falling back to its sport
// name, and returns LabelUnknown when neither is in the table.
func FriendlyDataType(msgs []fitmsg.Message) string {
	if l, ok := Label(string(ClassifyFile(msgs))); ok {
		return l
	}
	if l, ok := Label(ClassifyActivity(msgs)); ok {
		return l
	}
	return LabelUnknown
}
