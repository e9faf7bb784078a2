package simulate

import "time"

// Config holds configuration for a simulated judging session.
type Config struct {
	BaseURL    string        // Base URL of the service
	Judges     int           // Judges scoring every contestant
	Rounds     int           // Times each judge submits; later rounds replace earlier ones
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for score generation; 0 picks one from the clock
	OutputFile string        // Output file for generated sheets; empty skips saving
	Verbose    bool          // Enable verbose logging
}

// Stats holds session statistics.
type Stats struct {
	SheetsGenerated int
	SheetsSubmitted int
	SheetsCreated   int
	SheetsReplaced  int
	SheetsFailed    int
	Contestants     int
	Classifications int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
