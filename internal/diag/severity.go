package diag

// Severity ranks a diagnostic for sorting and for the exit-code policy:
// ошибки всегда валят прогон, предупреждения — только при
// warnings-as-errors, info на код выхода не влияет.
type Severity uint8

const (
	// SevInfo is for informational findings.
	SevInfo Severity = iota
	// SevWarning marks findings that fail the run only when warnings are
	// promoted to errors.
	SevWarning
	// SevError marks findings that always fail the run.
	SevError
)

var severityNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}
