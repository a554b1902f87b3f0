package diag

// Severity ranks a diagnostic by what it does to resolution of the file.
type Severity uint8

const (
	// SevInfo carries driver notes such as timings.
	SevInfo Severity = iota
	// SevWarning leaves an Unknown type behind; the walk continues.
	SevWarning
	// SevError marks a failed binding, such as no matching overload.
	SevError
	// SevFatal stops the walk of the file: an ambiguous name or overload.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Stops reports whether a diagnostic of this severity ends resolution of
// its file.
func (s Severity) Stops() bool { return s >= SevFatal }
