package main

// Exit codes returned by the CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure, API error)
	ExitConfigError = 2 // Configuration error (invalid period, bad config file)
	ExitDataError   = 3 // Data error (work or run not found, no works in period)
)
