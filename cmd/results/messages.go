package main

// RunsLoadedMsg carries the runs found under the results root.
type RunsLoadedMsg struct {
	Root string
	Runs []Run
}

// LoadErrorMsg indicates the results root could not be scanned.
type LoadErrorMsg struct {
	Err error
}
