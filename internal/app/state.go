package app

// AppState represents the different views/modes of the application.
type AppState int

const (
	ShowMenu AppState = iota
	DownloadingFiles
	ConvertingFiles
	ShowStatus
	ShowSummary
	ShowError
	Exiting
)

// running reports whether a pipeline goroutine owns the screen.
func (s AppState) running() bool {
	return s == DownloadingFiles || s == ConvertingFiles
}
