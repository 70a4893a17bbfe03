package catalog

// ProgressReporter provides callbacks for reporting scan progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once the files to scan are known.
	OnDiscoveryComplete(totalFiles int)

	// OnFileScanned is called after each file, whether or not it parsed.
	OnFileScanned(path string)

	// OnComplete is called when the scan finishes.
	OnComplete(result *ScanResult)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileScanned(path string)          {}
func (n *NoOpProgressReporter) OnComplete(result *ScanResult)      {}
